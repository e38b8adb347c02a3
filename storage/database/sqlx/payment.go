package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/payment"
)

type paymentRepository struct {
	db core.DB
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db core.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

type paymentRow struct {
	ID            string       `db:"id"`
	StudentID     string       `db:"student_id"`
	FeeID         string       `db:"fee_id"`
	Status        string       `db:"status"`
	Notes         string       `db:"notes"`
	MarkedBy      null.String  `db:"marked_by"`
	PaidAt        sql.NullTime `db:"paid_at"`
	SocietyID     string       `db:"society_id"`
	LastChangeKey string       `db:"last_change_key"`
	CreatedAt     sql.NullTime `db:"created_at"`
	UpdatedAt     sql.NullTime `db:"updated_at"`
}

func (row paymentRow) toPayment() payment.Payment {
	return payment.Payment{
		ID:            row.ID,
		StudentID:     row.StudentID,
		FeeID:         row.FeeID,
		Status:        payment.Status(row.Status),
		Notes:         row.Notes,
		MarkedBy:      row.MarkedBy.String,
		PaidAt:        row.PaidAt.Time,
		SocietyID:     row.SocietyID,
		LastChangeKey: row.LastChangeKey,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

const insertPaymentQuery = `
	INSERT INTO payment (id, student_id, fee_id, status, notes, marked_by, paid_at, society_id, last_change_key, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func insertArgs(p payment.Payment) []interface{} {
	return []interface{}{
		p.ID, p.StudentID, p.FeeID, string(p.Status), p.Notes,
		null.NewString(p.MarkedBy, p.MarkedBy != ""),
		null.NewTime(p.PaidAt, !p.PaidAt.IsZero()),
		p.SocietyID, p.LastChangeKey, p.CreatedAt, p.UpdatedAt,
	}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if _, err := repo.db.ExecContext(ctx, insertPaymentQuery, insertArgs(p)...); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return payment.Payment{}, payment.ErrExists
		}
		return payment.Payment{}, wrapStoreErr(err, "inserting payment")
	}
	return p, nil
}

// CreatePaymentBatch inserts the payments in one transaction, skipping pairs
// that already have a record so re-running a materialization stays a no-op.
func (repo paymentRepository) CreatePaymentBatch(ctx context.Context, ps []payment.Payment) (int, error) {
	if len(ps) == 0 {
		return 0, nil
	}
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, wrapStoreErr(err, "beginning payment batch")
	}

	const query = insertPaymentQuery + ` ON CONFLICT (student_id, fee_id) DO NOTHING`
	var created int
	for _, p := range ps {
		res, err := tx.ExecContext(ctx, query, insertArgs(p)...)
		if err != nil {
			_ = tx.Rollback()
			return 0, wrapStoreErr(err, "inserting payment batch")
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, wrapStoreErr(err, "committing payment batch")
	}
	return created, nil
}

func (repo paymentRepository) GetPaymentByPair(ctx context.Context, studentID, feeID string) (payment.Payment, error) {
	var row paymentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM payment WHERE student_id = $1 AND fee_id = $2`, studentID, feeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, wrapStoreErr(err, "getting payment by pair")
	}
	return row.toPayment(), nil
}

func (repo paymentRepository) FilterPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	query := `SELECT * FROM payment WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string { args = append(args, v); return placeholder(len(args)) }

	if filter.SocietyID != "" {
		query += ` AND society_id = ` + arg(filter.SocietyID)
	}
	if filter.StudentID != "" {
		query += ` AND student_id = ` + arg(filter.StudentID)
	}
	if filter.FeeID != "" {
		query += ` AND fee_id = ` + arg(filter.FeeID)
	}
	if filter.Status != "" {
		query += ` AND status = ` + arg(string(filter.Status))
	}
	query += ` ORDER BY student_id, fee_id`

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapStoreErr(err, "filtering payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.toPayment())
	}
	return payments, nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	const query = `
		UPDATE payment
		SET status = $2, notes = $3, marked_by = $4, paid_at = $5, last_change_key = $6, updated_at = $7
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		p.ID, string(p.Status), p.Notes,
		null.NewString(p.MarkedBy, p.MarkedBy != ""),
		null.NewTime(p.PaidAt, !p.PaidAt.IsZero()),
		p.LastChangeKey, p.UpdatedAt,
	)
	if err != nil {
		return payment.Payment{}, wrapStoreErr(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}
