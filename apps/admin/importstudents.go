package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/student"
	sqlxrepos "github.com/trezcool/okfines/storage/database/sqlx"
)

// importChunkSize bounds how many rows are committed per transaction.
const importChunkSize = 450

var newStudentRepoFunc = func(exec core.DBExecutor) student.Repository { // mockable
	return sqlxrepos.NewStudentRepository(exec)
}

// importStudents loads the registrar's CSV export into the student roster.
// Observed CSV columns: ID,lastName,firstName,middleName,studentNum,rfid,programID,collegeID,yearLevelID,sectionID
func (cli *commandLine) importStudents(path, societyID string, apply bool) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening CSV file")
	}
	defer f.Close()

	rows, badRows, err := readStudentCSV(f, societyID)
	if err != nil {
		return err
	}
	for _, msg := range badRows {
		logger.Printf("skipping: %s", msg)
	}

	if !apply {
		logger.Printf("dry run: %d students would be imported (%d rows skipped); re-run with -apply", len(rows), len(badRows))
		return nil
	}

	ctx := context.Background()
	var created, existing int
	for start := 0; start < len(rows); start += importChunkSize {
		end := start + importChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		n, e, err := cli.importChunk(ctx, rows[start:end])
		created += n
		existing += e
		if err != nil {
			return errors.Wrapf(err, "importing rows %d-%d", start+1, end)
		}
		logger.Printf("committed %d rows", end-start)
	}

	logger.Printf("import complete: %d created, %d already known, %d rows skipped", created, existing, len(badRows))
	return nil
}

func (cli *commandLine) importChunk(ctx context.Context, rows []student.Student) (created, existing int, err error) {
	tx, err := cli.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repo := newStudentRepoFunc(tx)
	for _, st := range rows {
		if _, err = repo.GetStudentByID(ctx, st.ID); err == nil {
			existing++ // re-running an import is a no-op for known students
			continue
		} else if errors.Cause(err) != student.ErrNotFound {
			return created, existing, err
		}
		if _, err = repo.CreateStudent(ctx, st); err != nil {
			return created, existing, err
		}
		created++
	}
	return created, existing, tx.Commit()
}

func readStudentCSV(r io.Reader, societyID string) (rows []student.Student, badRows []string, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading CSV header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(record []string, name string) string {
		if i, ok := col[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading CSV line %d", line)
		}

		rawID := field(record, "studentnum")
		if rawID == "" {
			rawID = field(record, "id")
		}
		id, err := student.NormalizeID(rawID)
		if err != nil {
			badRows = append(badRows, errors.Wrapf(err, "line %d (%q)", line, rawID).Error())
			continue
		}
		lastName := core.CleanString(field(record, "lastname"))
		if lastName == "" {
			badRows = append(badRows, errors.Errorf("line %d (%s): missing last name", line, id).Error())
			continue
		}

		now := core.Now()
		rows = append(rows, student.Student{
			ID:         id,
			LastName:   lastName,
			FirstName:  core.CleanString(field(record, "firstname")),
			MiddleName: core.CleanString(field(record, "middlename")),
			YearLevel:  core.CleanString(field(record, "yearlevelid")),
			Section:    core.CleanString(field(record, "sectionid")),
			SocietyID:  societyID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return rows, badRows, nil
}
