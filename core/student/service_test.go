package student_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/student"
	dummydb "github.com/trezcool/okfines/storage/database/dummy"
	testutil "github.com/trezcool/okfines/tests"
)

var (
	admin    = core.Actor{ID: "u-admin", Role: core.RoleAdmin, SocietyID: "soc-1"}
	homeroom = core.Actor{ID: "u-hr", Role: core.RoleHomeroom, SocietyID: "soc-1"}
)

func setup(t *testing.T) (*student.Service, student.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	repo := dummydb.NewStudentRepository(db)
	validate, _ := core.NewValidator()
	return student.NewService(repo, validate, nil), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	st, err := svc.Create(ctx, admin, student.NewStudent{
		ID:        "mmc2021-0653", // raw: lowercase, short suffix
		LastName:  "  Mensah ",
		FirstName: "Kofi",
		YearLevel: "2",
		Section:   "B",
	})
	require.NoError(t, err)
	assert.Equal(t, "MMC2021-00653", st.ID)
	assert.Equal(t, "Mensah", st.LastName)
	assert.Equal(t, "soc-1", st.SocietyID, "society defaults to the admin's")

	// duplicate canonical ID
	_, err = svc.Create(ctx, admin, student.NewStudent{ID: "MMC2021-0653", LastName: "Mensah"})
	assert.Equal(t, student.ErrExists, err)

	// homeroom cannot register students
	_, err = svc.Create(ctx, homeroom, student.NewStudent{ID: "MMC2025-00101", LastName: "Okafor"})
	assert.Equal(t, core.ErrPermissionDenied, err)

	// foreign society
	_, err = svc.Create(ctx, admin, student.NewStudent{ID: "MMC2025-00101", LastName: "Okafor", SocietyID: "soc-2"})
	assert.Equal(t, core.ErrPermissionDenied, err)
}

func TestService_GetByID_normalizes(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "MMC2025-00101", "Okafor", "Ada", "soc-1", "1", "A")

	st, err := svc.GetByID(ctx, "MMC2025 - 0101")
	require.NoError(t, err)
	assert.Equal(t, "MMC2025-00101", st.ID)

	_, err = svc.GetByID(ctx, "nope")
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestService_Filter_scopedToSociety(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "MMC2025-00101", "Okafor", "Ada", "soc-1", "1", "A")
	testutil.CreateStudent(t, repo, "MMC2025-00102", "Diallo", "Sam", "soc-2", "1", "A")

	// homeroom asking for another society still gets their own
	students, err := svc.Filter(ctx, homeroom, student.QueryFilter{SocietyID: "soc-2"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "soc-1", students[0].SocietyID)

	// admins are pinned to their own society too
	students, err = svc.Filter(ctx, admin, student.QueryFilter{SocietyID: "soc-2"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "soc-1", students[0].SocietyID)
}

func TestService_Update(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "MMC2025-00101", "Okafor", "Ada", "soc-1", "1", "A")

	st, err := svc.Update(ctx, admin, "MMC2025-0101", student.UpdateStudent{YearLevel: "2", Section: "B"})
	require.NoError(t, err)
	assert.Equal(t, "2", st.YearLevel)
	assert.Equal(t, "B", st.Section)
	assert.Equal(t, "Okafor", st.LastName, "unset fields keep their value")

	_, err = svc.Update(ctx, homeroom, "MMC2025-0101", student.UpdateStudent{Section: "C"})
	assert.Equal(t, core.ErrPermissionDenied, err)
}

func TestService_BulkImport(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "MMC2025-00101", "Okafor", "Ada", "soc-1", "1", "A")

	res := svc.BulkImport(ctx, admin, []student.NewStudent{
		{ID: "MMC2025-0101", LastName: "Okafor"},  // already known: skipped silently
		{ID: "MMC2021-0653", LastName: "Mensah"},  // created
		{ID: "not-an-id", LastName: "Broken"},     // collected as a row error
		{ID: "MMC2022-00444", LastName: ""},       // missing last name
	})

	assert.Equal(t, []string{"MMC2021-00653"}, res.Created)
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0].Error, "row 3")
	assert.Contains(t, res.Errors[1].Error, "row 4")
}
