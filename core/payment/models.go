package payment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/okfines/core"
)

// Status is the settlement state of a Payment.
// `pending` means collected by a homeroom officer, waiting for admin
// confirmation.
type Status string

const (
	StatusUnpaid  Status = "unpaid" // initial; also the implicit state before a record exists
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPending, StatusPaid:
		return true
	}
	return false
}

// Payment is the per-student record of obligation/settlement against one Fee.
// At most one Payment exists per (student, fee) pair; its society must equal
// both the student's and the fee's.
type Payment struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	FeeID     string    `json:"fee_id"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	MarkedBy  string    `json:"marked_by,omitempty"` // actor who last marked paid/pending
	PaidAt    time.Time `json:"paid_at,omitempty"`   // UTC; zero unless paid
	SocietyID string    `json:"society_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC

	// lastChangeKey records the idempotency key of the last applied status
	// change so a retried request is recognized as already done.
	LastChangeKey string `json:"-"`
}

// SetStatusRequest is a requested status transition for a (student, fee) pair.
type SetStatusRequest struct {
	Status Status `json:"status" validate:"required"`
	Notes  string `json:"notes"`
	// IdempotencyKey lets a client safely retry the same change; a repeat
	// request with the same key, status and actor is a no-op.
	IdempotencyKey string `json:"idempotency_key"`
}

func (r *SetStatusRequest) Validate(validate *validator.Validate) error {
	r.Notes = core.CleanString(r.Notes)
	r.IdempotencyKey = core.CleanString(r.IdempotencyKey)
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "must be one of unpaid, pending, paid"})
	}
	return nil
}

type QueryFilter struct {
	SocietyID string `query:"society_id"`
	StudentID string `query:"student_id"`
	FeeID     string `query:"fee_id"`
	Status    Status `query:"status"`
}
