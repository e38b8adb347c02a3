package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
)

type feeRepository struct {
	exec core.DBExecutor
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(exec core.DBExecutor) *feeRepository {
	return &feeRepository{exec: exec}
}

type feeRow struct {
	ID              string       `db:"id"`
	Description     string       `db:"description"`
	Amount          float64      `db:"amount"`
	SocietyID       string       `db:"society_id"`
	TargetYearLevel null.String  `db:"target_year_level"`
	TargetSection   null.String  `db:"target_section"`
	CreatedBy       string       `db:"created_by"`
	CreatedAt       sql.NullTime `db:"created_at"`
}

func (row feeRow) toFee() fee.Fee {
	return fee.Fee{
		ID:              row.ID,
		Description:     row.Description,
		Amount:          row.Amount,
		SocietyID:       row.SocietyID,
		TargetYearLevel: row.TargetYearLevel.String,
		TargetSection:   row.TargetSection.String,
		CreatedBy:       row.CreatedBy,
		CreatedAt:       row.CreatedAt.Time,
	}
}

func (repo feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	const query = `
		INSERT INTO fee (id, description, amount, society_id, target_year_level, target_section, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.exec.ExecContext(ctx, query,
		f.ID, f.Description, f.Amount, f.SocietyID,
		null.NewString(f.TargetYearLevel, f.TargetYearLevel != ""),
		null.NewString(f.TargetSection, f.TargetSection != ""),
		f.CreatedBy, f.CreatedAt,
	)
	if err != nil {
		return fee.Fee{}, wrapStoreErr(err, "inserting fee")
	}
	return f, nil
}

func (repo feeRepository) GetFeeByID(ctx context.Context, id string) (fee.Fee, error) {
	var row feeRow
	err := repo.exec.GetContext(ctx, &row, `SELECT * FROM fee WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return fee.Fee{}, fee.ErrNotFound
		}
		return fee.Fee{}, wrapStoreErr(err, "getting fee")
	}
	return row.toFee(), nil
}

func (repo feeRepository) FilterFees(ctx context.Context, filter fee.QueryFilter) ([]fee.Fee, error) {
	query := `SELECT * FROM fee WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string { args = append(args, v); return placeholder(len(args)) }

	if filter.SocietyID != "" {
		query += ` AND society_id = ` + arg(filter.SocietyID)
	}
	if filter.CreatedBy != "" {
		query += ` AND created_by = ` + arg(filter.CreatedBy)
	}
	query += ` ORDER BY created_at, id`

	var rows []feeRow
	if err := repo.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapStoreErr(err, "filtering fees")
	}
	fees := make([]fee.Fee, 0, len(rows))
	for _, row := range rows {
		fees = append(fees, row.toFee())
	}
	return fees, nil
}

func (repo feeRepository) UpdateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	// targeting is fixed at creation; only description and amount change
	const query = `UPDATE fee SET description = $2, amount = $3 WHERE id = $1`
	res, err := repo.exec.ExecContext(ctx, query, f.ID, f.Description, f.Amount)
	if err != nil {
		return fee.Fee{}, wrapStoreErr(err, "updating fee")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fee.Fee{}, fee.ErrNotFound
	}
	return f, nil
}

func (repo feeRepository) DeleteFeesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM fee WHERE id = ANY($1)`, pq.Array(ids))
	return wrapStoreErr(err, "deleting fees")
}
