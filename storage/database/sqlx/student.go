package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/student"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

type studentRow struct {
	ID         string       `db:"id"`
	LastName   string       `db:"last_name"`
	FirstName  string       `db:"first_name"`
	MiddleName string       `db:"middle_name"`
	Email      string       `db:"email"`
	YearLevel  string       `db:"year_level"`
	Section    string       `db:"section"`
	SocietyID  string       `db:"society_id"`
	CreatedAt  sql.NullTime `db:"created_at"`
	UpdatedAt  sql.NullTime `db:"updated_at"`
}

func (row studentRow) toStudent() student.Student {
	return student.Student{
		ID:         row.ID,
		LastName:   row.LastName,
		FirstName:  row.FirstName,
		MiddleName: row.MiddleName,
		Email:      row.Email,
		YearLevel:  row.YearLevel,
		Section:    row.Section,
		SocietyID:  row.SocietyID,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	const query = `
		INSERT INTO student (id, last_name, first_name, middle_name, email, year_level, section, society_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.exec.ExecContext(ctx, query,
		st.ID, st.LastName, st.FirstName, st.MiddleName, st.Email, st.YearLevel, st.Section, st.SocietyID,
		st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return student.Student{}, student.ErrExists
		}
		return student.Student{}, wrapStoreErr(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	err := repo.exec.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, wrapStoreErr(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := `SELECT * FROM student WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string { args = append(args, v); return placeholder(len(args)) }

	if filter.SocietyID != "" {
		query += ` AND society_id = ` + arg(filter.SocietyID)
	}
	if filter.YearLevel != "" {
		query += ` AND year_level = ` + arg(filter.YearLevel)
	}
	if filter.Section != "" {
		query += ` AND UPPER(section) = UPPER(` + arg(filter.Section) + `)`
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (id ILIKE ` + p + ` OR last_name ILIKE ` + p + ` OR first_name ILIKE ` + p + `)`
	}
	query += ` ORDER BY year_level, section, last_name, first_name, id`

	var rows []studentRow
	if err := repo.exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapStoreErr(err, "filtering students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	const query = `
		UPDATE student
		SET last_name = $2, first_name = $3, middle_name = $4, email = $5, year_level = $6, section = $7, updated_at = $8
		WHERE id = $1`
	res, err := repo.exec.ExecContext(ctx, query,
		st.ID, st.LastName, st.FirstName, st.MiddleName, st.Email, st.YearLevel, st.Section, st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, wrapStoreErr(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.exec.ExecContext(ctx, `DELETE FROM student WHERE id = ANY($1)`, pq.Array(ids))
	return wrapStoreErr(err, "deleting students")
}
