// Package sqlxrepos implements the repositories on postgres via sqlx.
package sqlxrepos

import (
	"fmt"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
)

func placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// wrapStoreErr tags connection-level failures as transient so services'
// bounded-retry paths know they may retry them.
func wrapStoreErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		switch pqErr.Code.Class() {
		// connection exception, insufficient resources, operator intervention
		case "08", "53", "57":
			return errors.Wrap(core.NewTransientError(err), msg)
		}
	}
	return errors.Wrap(err, msg)
}
