package fee_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	dummydb "github.com/trezcool/okfines/storage/database/dummy"
	testutil "github.com/trezcool/okfines/tests"
)

var (
	admin    = core.Actor{ID: "u-admin", Role: core.RoleAdmin, SocietyID: "soc-1"}
	homeroom = core.Actor{ID: "u-hr", Role: core.RoleHomeroom, SocietyID: "soc-1"}
)

func setup(t *testing.T) (*fee.Service, fee.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	repo := dummydb.NewFeeRepository(db)
	validate, _ := core.NewValidator()
	return fee.NewService(repo, validate), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, admin, fee.NewFee{
		Description:     "Year 2 dues",
		Amount:          100,
		TargetYearLevel: "2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "soc-1", f.SocietyID)
	assert.Equal(t, "u-admin", f.CreatedBy)
	assert.True(t, f.Targeted())

	// amount must be positive
	_, err = svc.Create(ctx, admin, fee.NewFee{Description: "Broken", Amount: 0})
	require.Error(t, err)

	_, err = svc.Create(ctx, homeroom, fee.NewFee{Description: "Dues", Amount: 10})
	assert.Equal(t, core.ErrPermissionDenied, err)
}

func TestService_Filter_scopedToSociety(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateFee(t, repo, "f1", "Dues", 50, "soc-1", "u-admin", "", "")
	testutil.CreateFee(t, repo, "f2", "Other dues", 50, "soc-2", "u-x", "", "")

	fees, err := svc.Filter(ctx, homeroom, fee.QueryFilter{SocietyID: "soc-2"})
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "soc-1", fees[0].SocietyID)

	// admins are pinned to their own society too
	fees, err = svc.Filter(ctx, admin, fee.QueryFilter{SocietyID: "soc-2"})
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "soc-1", fees[0].SocietyID)
}

func TestService_Update(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateFee(t, repo, "f1", "Dues", 50, "soc-1", "u-admin", "2", "B")

	f, err := svc.Update(ctx, admin, "f1", fee.UpdateFee{Description: "Annual dues", Amount: 60})
	require.NoError(t, err)
	assert.Equal(t, "Annual dues", f.Description)
	assert.Equal(t, 60.0, f.Amount)
	// targeting is fixed at creation
	assert.Equal(t, "2", f.TargetYearLevel)
	assert.Equal(t, "B", f.TargetSection)

	foreignAdmin := core.Actor{ID: "u-x", Role: core.RoleAdmin, SocietyID: "soc-2"}
	_, err = svc.Update(ctx, foreignAdmin, "f1", fee.UpdateFee{Description: "Hijacked", Amount: 1})
	assert.Equal(t, core.ErrPermissionDenied, err)
}

func TestService_Delete(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateFee(t, repo, "f1", "Dues", 50, "soc-1", "u-admin", "", "")

	// only the creating admin may delete
	otherAdmin := core.Actor{ID: "u-other", Role: core.RoleAdmin, SocietyID: "soc-1"}
	assert.Equal(t, core.ErrPermissionDenied, svc.Delete(ctx, otherAdmin, "f1"))

	require.NoError(t, svc.Delete(ctx, admin, "f1"))
	_, err := svc.GetByID(ctx, "f1")
	assert.Equal(t, fee.ErrNotFound, err)
}
