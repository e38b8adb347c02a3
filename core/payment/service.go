package payment

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/student"
)

// maxBatchSize bounds one transactional unit during bulk materialization.
const maxBatchSize = 500

var (
	// errors
	ErrNotFound = errors.New("payment not found")
	ErrExists   = errors.New("a payment for this student and fee already exists")
	// ErrSocietyMismatch flags a payment whose society does not match both
	// its student's and its fee's; a data integrity violation.
	ErrSocietyMismatch = errors.New("payment society does not match student and fee")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		// CreatePaymentBatch atomically inserts the given payments, skipping
		// pairs that already have a record. Returns the number created.
		CreatePaymentBatch(ctx context.Context, ps []Payment) (int, error)
		GetPaymentByPair(ctx context.Context, studentID, feeID string) (Payment, error)
		// FilterPayments applies AND operation on available QueryFilter fields.
		FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
	}

	ServiceInterface interface {
		SetStatus(ctx context.Context, actor core.Actor, studentID, feeID string, req SetStatusRequest) (Payment, error)
		MaterializeFee(ctx context.Context, actor core.Actor, feeID string, overrideStudentIDs []string) (int, error)
		Filter(ctx context.Context, actor core.Actor, filter QueryFilter) ([]Payment, error)
		StudentSummary(ctx context.Context, studentID string) (StudentSummary, error)
		OutstandingReport(ctx context.Context, actor core.Actor) ([]CohortOutstanding, error)
	}

	Service struct {
		repo     Repository
		feeRepo  fee.Repository
		stRepo   student.Repository
		validate *validator.Validate
		logger   core.Logger
		mailSvc  core.EmailService
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(
	repo Repository,
	feeRepo fee.Repository,
	stRepo student.Repository,
	validate *validator.Validate,
	logger core.Logger,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		repo:     repo,
		feeRepo:  feeRepo,
		stRepo:   stRepo,
		validate: validate,
		logger:   logger,
		mailSvc:  mailSvc,
	}
}

// SetStatus applies a role-gated status transition to the payment for the
// given (student, fee) pair, creating the record at `unpaid` first when none
// exists yet. The decision is recomputed from a fresh read of the current
// status immediately before writing, so re-running against a stale view stays
// safe. A repeat call with identical status, actor and idempotency key is a
// no-op.
func (svc *Service) SetStatus(ctx context.Context, actor core.Actor, studentID, feeID string, req SetStatusRequest) (Payment, error) {
	if actor.IsStudent() || !actor.Role.Valid() {
		return Payment{}, core.ErrPermissionDenied
	}
	if err := req.Validate(svc.validate); err != nil {
		return Payment{}, err
	}

	sid, err := student.NormalizeID(studentID)
	if err != nil {
		return Payment{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
	}

	st, err := svc.stRepo.GetStudentByID(ctx, sid)
	if err != nil {
		return Payment{}, errors.Wrap(err, "finding student")
	}
	f, err := svc.feeRepo.GetFeeByID(ctx, feeID)
	if err != nil {
		return Payment{}, errors.Wrap(err, "finding fee")
	}
	if f.SocietyID != st.SocietyID {
		return Payment{}, ErrSocietyMismatch
	}
	if !actor.SameSociety(st.SocietyID) {
		return Payment{}, core.ErrPermissionDenied
	}

	// fresh read right before deciding; lazily materialize the base record
	p, err := svc.repo.GetPaymentByPair(ctx, sid, feeID)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Payment{}, errors.Wrap(err, "finding payment")
		}
		p, err = svc.repo.CreatePayment(ctx, newUnpaidPayment(f, st))
		if err != nil {
			if errors.Cause(err) != ErrExists {
				return Payment{}, errors.Wrap(err, "materializing payment")
			}
			// someone else created it first; re-read
			if p, err = svc.repo.GetPaymentByPair(ctx, sid, feeID); err != nil {
				return Payment{}, errors.Wrap(err, "finding payment")
			}
		}
	}

	if p.Status == req.Status {
		// already in the requested state; repeating the change (whether a
		// client retry with the same key or a double click) must not
		// double-count totals or duplicate audit fields
		return p, nil
	}
	if !transitionAllowed(actor.Role, p.Status, req.Status) {
		return Payment{}, core.ErrPermissionDenied
	}

	p.apply(actor, req)
	p, err = svc.repo.UpdatePayment(ctx, p)
	if err != nil {
		return Payment{}, errors.Wrap(err, "updating payment")
	}

	if p.Status == StatusPaid {
		svc.sendReceipt(st, f, p)
	}
	return p, nil
}

// MaterializeFee creates `unpaid` payment records for every student the fee
// targets, or for an explicit override list of student IDs (which bypasses
// targeting). Existing pairs are skipped, missing students are treated as no
// longer enrolled and silently excluded, and writes are chunked so a failure
// mid-run never corrupts already-committed chunks. Re-running is a no-op for
// pairs that already have records. Returns the number of records created.
func (svc *Service) MaterializeFee(ctx context.Context, actor core.Actor, feeID string, overrideStudentIDs []string) (int, error) {
	if !actor.IsAdmin() {
		return 0, core.ErrPermissionDenied
	}
	f, err := svc.feeRepo.GetFeeByID(ctx, feeID)
	if err != nil {
		return 0, errors.Wrap(err, "finding fee")
	}
	if f.SocietyID != "" && !actor.SameSociety(f.SocietyID) {
		return 0, core.ErrPermissionDenied
	}

	var targets []student.Student
	if len(overrideStudentIDs) > 0 {
		for _, rawID := range overrideStudentIDs {
			sid, err := student.NormalizeID(rawID)
			if err != nil {
				continue // bad rows never fail the whole run
			}
			st, err := svc.stRepo.GetStudentByID(ctx, sid)
			if err != nil {
				continue // no longer enrolled
			}
			if st.SocietyID != f.SocietyID {
				// a payment's society must match both the student's and the
				// fee's; a cross-society reference would be untransitionable
				continue
			}
			targets = append(targets, st)
		}
	} else {
		students, err := svc.stRepo.FilterStudents(ctx, student.QueryFilter{SocietyID: f.SocietyID})
		if err != nil {
			return 0, errors.Wrap(err, "listing society students")
		}
		for _, st := range students {
			if f.AppliesTo(st) {
				targets = append(targets, st)
			}
		}
	}

	var created int
	for start := 0; start < len(targets); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := make([]Payment, 0, end-start)
		for _, st := range targets[start:end] {
			batch = append(batch, newUnpaidPayment(f, st))
		}
		n, err := svc.repo.CreatePaymentBatch(ctx, batch)
		created += n
		if err != nil {
			// committed chunks stay committed; re-running skips them
			return created, errors.Wrap(err, "writing payment batch")
		}
	}
	if svc.logger != nil {
		svc.logger.Info("fee materialized", map[string]interface{}{"fee": f.ID, "created": created})
	}
	return created, nil
}

func (svc *Service) Filter(ctx context.Context, actor core.Actor, filter QueryFilter) ([]Payment, error) {
	if actor.IsStudent() {
		return nil, core.ErrPermissionDenied
	}
	// never expose another society's ledger
	filter.SocietyID = actor.SocietyID

	var payments []Payment
	err := core.Retry(ctx, func() (err error) {
		payments, err = svc.repo.FilterPayments(ctx, filter)
		return err
	})
	return payments, err
}

func newUnpaidPayment(f fee.Fee, st student.Student) Payment {
	societyID := st.SocietyID
	if societyID == "" {
		societyID = f.SocietyID
	}
	now := core.Now()
	return Payment{
		ID:        uuid.New().String(),
		StudentID: st.ID,
		FeeID:     f.ID,
		Status:    StatusUnpaid,
		SocietyID: societyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (svc *Service) sendReceipt(st student.Student, f fee.Fee, p Payment) {
	if svc.mailSvc == nil || st.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(receiptEmail(st, f, p))
}
