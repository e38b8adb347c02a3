package student

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
	ErrExists   = errors.New("a student with this ID already exists")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on the student's names or ID.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, actor core.Actor, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Filter(ctx context.Context, actor core.Actor, filter QueryFilter) ([]Student, error)
		Update(ctx context.Context, actor core.Actor, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, actor core.Actor, ids ...string) error
		BulkImport(ctx context.Context, actor core.Actor, rows []NewStudent) BulkResult
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, validate: validate, logger: logger}
}

// BulkResult reports the outcome of a bulk import; one bad row never aborts
// the whole run.
type BulkResult struct {
	Created []string    `json:"created"`
	Errors  []ItemError `json:"errors,omitempty"`
}

type ItemError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, ns NewStudent) (Student, error) {
	if !actor.IsAdmin() {
		return Student{}, core.ErrPermissionDenied
	}
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if ns.SocietyID == "" {
		ns.SocietyID = actor.SocietyID
	}
	if !actor.SameSociety(ns.SocietyID) {
		return Student{}, core.ErrPermissionDenied
	}

	now := core.Now()
	st := Student{
		ID:         ns.ID,
		LastName:   ns.LastName,
		FirstName:  ns.FirstName,
		MiddleName: ns.MiddleName,
		Email:      ns.Email,
		YearLevel:  ns.YearLevel,
		Section:    ns.Section,
		SocietyID:  ns.SocietyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStudent(ctx, st)
}

// GetByID normalizes the given raw ID before looking it up.
func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	nid, err := NormalizeID(id)
	if err != nil {
		return Student{}, core.NewValidationError(err, core.FieldError{Field: "id", Error: err.Error()})
	}

	var st Student
	err = core.Retry(ctx, func() error {
		st, err = svc.repo.GetStudentByID(ctx, nid)
		return err
	})
	return st, err
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter) ([]Student, error) {
	filter.Clean()
	// never expose another society's roster
	filter.SocietyID = actor.SocietyID

	var students []Student
	err := core.Retry(ctx, func() (err error) {
		students, err = svc.repo.FilterStudents(ctx, filter)
		return err
	})
	return students, err
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id string, us UpdateStudent) (Student, error) {
	if !actor.IsAdmin() {
		return Student{}, core.ErrPermissionDenied
	}
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if !actor.SameSociety(orig.SocietyID) {
		return Student{}, core.ErrPermissionDenied
	}
	if err = us.Validate(orig, svc.validate); err != nil {
		return Student{}, err
	}

	st := orig
	st.LastName = us.LastName
	st.FirstName = us.FirstName
	st.MiddleName = us.MiddleName
	st.Email = us.Email
	st.YearLevel = us.YearLevel
	st.Section = us.Section
	st.UpdatedAt = core.Now()
	return svc.repo.UpdateStudent(ctx, st)
}

func (svc *Service) Delete(ctx context.Context, actor core.Actor, ids ...string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

// BulkImport registers the given rows, skipping rows that already exist and
// collecting per-row errors instead of aborting.
func (svc *Service) BulkImport(ctx context.Context, actor core.Actor, rows []NewStudent) BulkResult {
	var res BulkResult
	for i, row := range rows {
		st, err := svc.Create(ctx, actor, row)
		if err != nil {
			if errors.Cause(err) == ErrExists {
				continue // re-running an import is a no-op for known students
			}
			res.Errors = append(res.Errors, ItemError{
				ID:    row.ID,
				Error: fmt.Sprintf("row %d: %v", i+1, err),
			})
			if svc.logger != nil {
				svc.logger.Warn("student import: skipping row", map[string]interface{}{"row": i + 1, "id": row.ID, "err": err.Error()})
			}
			continue
		}
		res.Created = append(res.Created, st.ID)
	}
	return res
}
