package fee

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
)

var (
	// errors
	ErrNotFound = errors.New("fee not found")
)

type (
	Repository interface {
		CreateFee(ctx context.Context, f Fee) (Fee, error)
		GetFeeByID(ctx context.Context, id string) (Fee, error)
		// FilterFees applies AND operation on available QueryFilter fields.
		FilterFees(ctx context.Context, filter QueryFilter) ([]Fee, error)
		UpdateFee(ctx context.Context, f Fee) (Fee, error)
		DeleteFeesByID(ctx context.Context, ids ...string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, actor core.Actor, nf NewFee) (Fee, error)
		GetByID(ctx context.Context, id string) (Fee, error)
		Filter(ctx context.Context, actor core.Actor, filter QueryFilter) ([]Fee, error)
		Update(ctx context.Context, actor core.Actor, id string, uf UpdateFee) (Fee, error)
		Delete(ctx context.Context, actor core.Actor, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, actor core.Actor, nf NewFee) (Fee, error) {
	if !actor.IsAdmin() {
		return Fee{}, core.ErrPermissionDenied
	}
	if err := nf.Validate(svc.validate); err != nil {
		return Fee{}, err
	}

	f := Fee{
		ID:              uuid.New().String(),
		Description:     nf.Description,
		Amount:          nf.Amount,
		SocietyID:       actor.SocietyID,
		TargetYearLevel: nf.TargetYearLevel,
		TargetSection:   nf.TargetSection,
		CreatedBy:       actor.ID,
		CreatedAt:       core.Now(),
	}
	return svc.repo.CreateFee(ctx, f)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Fee, error) {
	var f Fee
	err := core.Retry(ctx, func() (err error) {
		f, err = svc.repo.GetFeeByID(ctx, id)
		return err
	})
	return f, err
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter) ([]Fee, error) {
	// never expose another society's catalog
	filter.SocietyID = actor.SocietyID

	var fees []Fee
	err := core.Retry(ctx, func() (err error) {
		fees, err = svc.repo.FilterFees(ctx, filter)
		return err
	})
	return fees, err
}

func (svc *Service) Update(ctx context.Context, actor core.Actor, id string, uf UpdateFee) (Fee, error) {
	if !actor.IsAdmin() {
		return Fee{}, core.ErrPermissionDenied
	}
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	if !actor.SameSociety(orig.SocietyID) {
		return Fee{}, core.ErrPermissionDenied
	}
	if err = uf.Validate(orig, svc.validate); err != nil {
		return Fee{}, err
	}

	f := orig
	f.Description = uf.Description
	f.Amount = uf.Amount
	return svc.repo.UpdateFee(ctx, f)
}

// Delete removes a fee definition. Only the creating admin may delete it, and
// only within their own society.
func (svc *Service) Delete(ctx context.Context, actor core.Actor, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	f, err := svc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f.CreatedBy != actor.ID {
		return core.ErrPermissionDenied
	}
	if f.SocietyID != "" && !actor.SameSociety(f.SocietyID) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteFeesByID(ctx, id)
}
