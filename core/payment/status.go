package payment

import (
	"time"

	"github.com/trezcool/okfines/core"
)

// transitionAllowed is the role-gated status transition table.
//
//	| role     | unpaid ->       | pending ->        | paid ->  |
//	| admin    | paid            | paid or unpaid    | unpaid   |
//	| homeroom | pending         | unpaid            | (locked) |
//	| others   | no write access |                   |          |
func transitionAllowed(role core.Role, from, to Status) bool {
	switch role {
	case core.RoleAdmin:
		switch from {
		case StatusUnpaid:
			return to == StatusPaid
		case StatusPending:
			return to == StatusPaid || to == StatusUnpaid
		case StatusPaid:
			return to == StatusUnpaid
		}
	case core.RoleHomeroom:
		switch from {
		case StatusUnpaid:
			return to == StatusPending
		case StatusPending:
			return to == StatusUnpaid
		case StatusPaid:
			return false // locked for homeroom; only admin may revert
		}
	}
	return false
}

// apply mutates p with the side effects of a permitted transition: marking
// paid sets the paid timestamp and recording actor; leaving paid clears the
// timestamp.
func (p *Payment) apply(actor core.Actor, req SetStatusRequest) {
	p.Status = req.Status
	p.MarkedBy = actor.ID
	if req.Status == StatusPaid {
		p.PaidAt = core.Now()
	} else {
		p.PaidAt = time.Time{}
	}
	if req.Notes != "" {
		p.Notes = req.Notes
	}
	p.LastChangeKey = req.IdempotencyKey
	p.UpdatedAt = core.Now()
}
