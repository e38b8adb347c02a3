package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/okfines/core"
)

// Student is one enrolled member of a society. The normalized student number
// is the primary key; records are created by bulk import or individual
// registration and rarely change afterwards.
type Student struct {
	ID         string    `json:"id"` // normalized, e.g. MMC2025-00109
	LastName   string    `json:"last_name"`
	FirstName  string    `json:"first_name"`
	MiddleName string    `json:"middle_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	YearLevel  string    `json:"year_level"`
	Section    string    `json:"section"`
	SocietyID  string    `json:"society_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Name returns the student's display name used for report ordering.
func (s Student) Name() string {
	if s.FirstName == "" {
		return s.LastName
	}
	return s.LastName + ", " + s.FirstName
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	ID         string `json:"id" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	Email      string `json:"email" validate:"omitempty,email"`
	YearLevel  string `json:"year_level"`
	Section    string `json:"section"`
	SocietyID  string `json:"society_id"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	id, err := NormalizeID(ns.ID)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "id", Error: err.Error()})
	}
	ns.ID = id
	ns.LastName = core.CleanString(ns.LastName)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.MiddleName = core.CleanString(ns.MiddleName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.YearLevel = core.CleanString(ns.YearLevel)
	ns.Section = core.CleanString(ns.Section)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	Email      string `json:"email" validate:"omitempty,email"`
	YearLevel  string `json:"year_level"`
	Section    string `json:"section"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if name := core.CleanString(us.LastName); name != "" {
		us.LastName = name
	} else {
		us.LastName = orig.LastName
	}
	if name := core.CleanString(us.FirstName); name != "" {
		us.FirstName = name
	} else {
		us.FirstName = orig.FirstName
	}
	if name := core.CleanString(us.MiddleName); name != "" {
		us.MiddleName = name
	} else {
		us.MiddleName = orig.MiddleName
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}
	if yl := core.CleanString(us.YearLevel); yl != "" {
		us.YearLevel = yl
	} else {
		us.YearLevel = orig.YearLevel
	}
	if sec := core.CleanString(us.Section); sec != "" {
		us.Section = sec
	} else {
		us.Section = orig.Section
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	Search    string `query:"search"`
	SocietyID string `query:"society_id"`
	YearLevel string `query:"year_level"`
	Section   string `query:"section"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.YearLevel = core.CleanString(qf.YearLevel)
	qf.Section = core.CleanString(qf.Section)
}
