package fee

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/student"
)

// Fee is a contribution definition, optionally targeted at a year-level /
// section cohort of its society. When both target fields are unset the fee
// applies to every student in the society. Targeting is fixed at creation;
// only description and amount may be edited afterwards.
type Fee struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"`
	Amount          float64   `json:"amount"`
	SocietyID       string    `json:"society_id"`
	TargetYearLevel string    `json:"target_year_level,omitempty"`
	TargetSection   string    `json:"target_section,omitempty"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

// Targeted reports whether the fee is narrowed to a cohort.
func (f Fee) Targeted() bool {
	return f.TargetYearLevel != "" || f.TargetSection != ""
}

// AppliesTo decides whether this fee applies to the given student: every set
// target field must equal the corresponding student field. Comparison is done
// on trimmed, case-folded string representations to tolerate numeric-vs-string
// storage drift in legacy records.
func (f Fee) AppliesTo(st student.Student) bool {
	if f.TargetYearLevel != "" && !fieldsEqual(f.TargetYearLevel, st.YearLevel) {
		return false
	}
	if f.TargetSection != "" && !fieldsEqual(f.TargetSection, st.Section) {
		return false
	}
	return true
}

func fieldsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NewFee contains information needed to create a new Fee.
type NewFee struct {
	Description     string  `json:"description" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	TargetYearLevel string  `json:"target_year_level"`
	TargetSection   string  `json:"target_section"`
}

func (nf *NewFee) Validate(validate *validator.Validate) error {
	nf.Description = core.CleanString(nf.Description)
	nf.TargetYearLevel = core.CleanString(nf.TargetYearLevel)
	nf.TargetSection = core.CleanString(nf.TargetSection)
	return validate.Struct(nf)
}

// UpdateFee defines what may be edited on an existing Fee. Targeting is not
// editable once payment records exist for the fee.
type UpdateFee struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"omitempty,gt=0"`
}

func (uf *UpdateFee) Validate(orig Fee, validate *validator.Validate) error {
	if desc := core.CleanString(uf.Description); desc != "" {
		uf.Description = desc
	} else {
		uf.Description = orig.Description
	}
	if uf.Amount == 0 {
		uf.Amount = orig.Amount
	}
	return validate.Struct(uf)
}

type QueryFilter struct {
	SocietyID string `query:"society_id"`
	CreatedBy string `query:"created_by"`
}
