package payment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/payment"
	testutil "github.com/trezcool/okfines/tests"
)

func TestService_StudentSummary(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	st := testutil.CreateStudent(t, env.stRepo, "MMC2021-00653", "Mensah", "Kofi", "soc-1", "2", "B")
	membership := testutil.CreateFee(t, env.feeRepo, "f1", "Membership", 50, "soc-1", "u-admin", "", "")
	shirt := testutil.CreateFee(t, env.feeRepo, "f2", "Year 2 shirt", 25, "soc-1", "u-admin", "2", "")
	otherCohort := testutil.CreateFee(t, env.feeRepo, "f3", "Year 1 shirt", 25, "soc-1", "u-admin", "1", "")

	testutil.CreatePayment(t, env.repo, "p1", st.ID, membership.ID, payment.StatusPaid, "soc-1")
	testutil.CreatePayment(t, env.repo, "p2", st.ID, shirt.ID, payment.StatusUnpaid, "soc-1")
	// stray unpaid record for a fee that targets another cohort: hidden
	testutil.CreatePayment(t, env.repo, "p3", st.ID, otherCohort.ID, payment.StatusUnpaid, "soc-1")

	sum, err := env.svc.StudentSummary(ctx, "mmc2021-0653") // raw ID, short suffix
	require.NoError(t, err)

	assert.Equal(t, "MMC2021-00653", sum.StudentID)
	assert.Equal(t, "Mensah, Kofi", sum.Name)
	assert.Equal(t, 50.0, sum.TotalPaid)
	assert.Equal(t, 25.0, sum.TotalUnpaid)
	require.Len(t, sum.Payments, 2)
	assert.Equal(t, "f1", sum.Payments[0].FeeID)
	assert.Equal(t, "f2", sum.Payments[1].FeeID)
}

func TestService_StudentSummary_paidAlwaysCounts(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// the student moved cohorts after paying a targeted fee
	st := testutil.CreateStudent(t, env.stRepo, "MMC2021-00653", "Mensah", "Kofi", "soc-1", "3", "B")
	oldFee := testutil.CreateFee(t, env.feeRepo, "f1", "Year 2 shirt", 25, "soc-1", "u-admin", "2", "")
	testutil.CreatePayment(t, env.repo, "p1", st.ID, oldFee.ID, payment.StatusPaid, "soc-1")

	sum, err := env.svc.StudentSummary(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 25.0, sum.TotalPaid, "settled history survives targeting changes")
	assert.Equal(t, 0.0, sum.TotalUnpaid)
}

func TestService_OutstandingReport(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	// two cohorts, deterministic ordering expected
	a := testutil.CreateStudent(t, env.stRepo, "MMC2025-00101", "Okafor", "Ada", "soc-1", "1", "A")
	b := testutil.CreateStudent(t, env.stRepo, "MMC2025-00102", "Diallo", "Sam", "soc-1", "1", "A")
	c := testutil.CreateStudent(t, env.stRepo, "MMC2021-00653", "Mensah", "Kofi", "soc-1", "2", "B")
	settled := testutil.CreateStudent(t, env.stRepo, "MMC2025-00103", "Toure", "Ali", "soc-1", "1", "A")

	f := testutil.CreateFee(t, env.feeRepo, "f1", "Membership", 50, "soc-1", "u-admin", "", "")
	testutil.CreatePayment(t, env.repo, "p1", a.ID, f.ID, payment.StatusUnpaid, "soc-1")
	testutil.CreatePayment(t, env.repo, "p2", b.ID, f.ID, payment.StatusPending, "soc-1")
	testutil.CreatePayment(t, env.repo, "p3", c.ID, f.ID, payment.StatusUnpaid, "soc-1")
	testutil.CreatePayment(t, env.repo, "p4", settled.ID, f.ID, payment.StatusPaid, "soc-1")

	report, err := env.svc.OutstandingReport(ctx, homeroom)
	require.NoError(t, err)

	require.Len(t, report, 2)
	assert.Equal(t, "1", report[0].YearLevel)
	assert.Equal(t, "A", report[0].Section)
	require.Len(t, report[0].Students, 2, "settled student is not listed")
	// sorted by name within the cohort
	assert.Equal(t, "Diallo, Sam", report[0].Students[0].Name)
	assert.Equal(t, "Okafor, Ada", report[0].Students[1].Name)
	assert.Equal(t, 50.0, report[0].Students[0].TotalUnpaid)

	assert.Equal(t, "2", report[1].YearLevel)
	require.Len(t, report[1].Students, 1)
	assert.Equal(t, "Mensah, Kofi", report[1].Students[0].Name)

	// same snapshot, same report
	again, err := env.svc.OutstandingReport(ctx, homeroom)
	require.NoError(t, err)
	assert.Equal(t, report, again)

	_, err = env.svc.OutstandingReport(ctx, studAct)
	assert.Equal(t, core.ErrPermissionDenied, err)
}

// TestService_targetedFeeEndToEnd walks a targeted fee through materialization,
// confirmation and reporting for a two-student society.
func TestService_targetedFeeEndToEnd(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	a := testutil.CreateStudent(t, env.stRepo, "MMC2025-00101", "Okafor", "Ada", "soc-1", "2", "A")
	b := testutil.CreateStudent(t, env.stRepo, "MMC2025-00102", "Diallo", "Sam", "soc-1", "3", "A")
	f := testutil.CreateFee(t, env.feeRepo, "f1", "Year 2 dues", 100, "soc-1", "u-admin", "2", "")

	// only the year-2 student gets a record
	created, err := env.svc.MaterializeFee(ctx, admin, f.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	_, err = env.repo.GetPaymentByPair(ctx, b.ID, f.ID)
	assert.Equal(t, payment.ErrNotFound, err)

	// admin confirms the payment
	_, err = env.svc.SetStatus(ctx, admin, a.ID, f.ID, payment.SetStatusRequest{Status: payment.StatusPaid})
	require.NoError(t, err)

	sum, err := env.svc.StudentSummary(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, sum.TotalPaid)
	assert.Equal(t, 0.0, sum.TotalUnpaid)

	// neither student has an outstanding balance
	report, err := env.svc.OutstandingReport(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, report)

	sumB, err := env.svc.StudentSummary(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, sumB.Payments)
}

func TestService_deletedFeeLeavesStrays(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	st := testutil.CreateStudent(t, env.stRepo, "MMC2021-00653", "Mensah", "Kofi", "soc-1", "2", "B")
	f := testutil.CreateFee(t, env.feeRepo, "f1", "Membership", 50, "soc-1", "u-admin", "", "")
	testutil.CreatePayment(t, env.repo, "p1", st.ID, f.ID, payment.StatusUnpaid, "soc-1")

	validate, _ := core.NewValidator()
	feeSvc := fee.NewService(env.feeRepo, validate)
	require.NoError(t, feeSvc.Delete(ctx, admin, f.ID))

	// the record stays behind but no longer counts anywhere
	p, err := env.repo.GetPaymentByPair(ctx, st.ID, f.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusUnpaid, p.Status)

	sum, err := env.svc.StudentSummary(ctx, st.ID)
	require.NoError(t, err)
	assert.Zero(t, sum.TotalUnpaid)
	assert.Empty(t, sum.Payments)

	report, err := env.svc.OutstandingReport(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, report)
}
