package student

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidID is returned when a raw student ID cannot be normalized
	// into one of the accepted shapes.
	ErrInvalidID = errors.New("invalid student ID format")

	// canonical form, e.g. MMC2025-00109 (3 letters, 4 digits, dash, 5 digits)
	canonicalIDRegex = regexp.MustCompile(`^[A-Z]{3}\d{4}-\d{5}$`)
	// same prefix but a 4-digit suffix; legacy records, e.g. MMC2021-0653
	shortSuffixIDRegex = regexp.MustCompile(`^[A-Z]{3}\d{4}-\d{4}$`)
	// legacy short form, e.g. C12-34; passed through unchanged
	legacyIDRegex = regexp.MustCompile(`^C\d+-\d+$`)

	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// NormalizeID canonicalizes a free-text student ID from manual entry or CSV
// import. It strips whitespace (including spacing around the dash),
// uppercases, and left-pads a 4-digit numeric suffix to the canonical 5
// digits. IDs that match no recognized shape fail with ErrInvalidID; no
// guessing. NormalizeID is idempotent.
func NormalizeID(raw string) (string, error) {
	id := whitespaceRegex.ReplaceAllString(raw, "")
	id = strings.ToUpper(id)

	switch {
	case canonicalIDRegex.MatchString(id), legacyIDRegex.MatchString(id):
		return id, nil
	case shortSuffixIDRegex.MatchString(id):
		i := strings.IndexByte(id, '-')
		return id[:i+1] + "0" + id[i+1:], nil
	}
	return "", ErrInvalidID
}
