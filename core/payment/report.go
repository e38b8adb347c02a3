package payment

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/student"
)

// StudentSummary is the derived (not persisted) balance view for one student:
// the payments that are relevant to them plus the totals computed by summing
// the matched fee amounts. A payment is relevant when it is already paid, or
// when it is unpaid/pending and its fee's targeting matches the student.
type StudentSummary struct {
	StudentID   string    `json:"student_id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	SocietyID   string    `json:"society_id,omitempty"`
	TotalPaid   float64   `json:"total_paid"`
	TotalUnpaid float64   `json:"total_unpaid"`
	Payments    []Payment `json:"payments"`
	Fees        []fee.Fee `json:"fees"`
}

// CohortOutstanding groups outstanding balances by (year level, section).
type CohortOutstanding struct {
	YearLevel string               `json:"year_level"`
	Section   string               `json:"section"`
	Students  []OutstandingBalance `json:"students"`
}

type OutstandingBalance struct {
	StudentID   string  `json:"student_id"`
	Name        string  `json:"name"`
	TotalPaid   float64 `json:"total_paid"`
	TotalUnpaid float64 `json:"total_unpaid"`
}

// StudentSummary computes the balance view for one student, looked up by
// (raw) student ID. Fees targeted at other cohorts are hidden even when a
// stray payment record exists for them.
func (svc *Service) StudentSummary(ctx context.Context, studentID string) (StudentSummary, error) {
	sid, err := student.NormalizeID(studentID)
	if err != nil {
		return StudentSummary{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: err.Error()})
	}

	var st student.Student
	if err = core.Retry(ctx, func() (err error) {
		st, err = svc.stRepo.GetStudentByID(ctx, sid)
		return err
	}); err != nil {
		return StudentSummary{}, errors.Wrap(err, "finding student")
	}

	fees, payments, err := svc.societySnapshot(ctx, st.SocietyID)
	if err != nil {
		return StudentSummary{}, err
	}

	sum := summarize(st, fees, paymentsByStudent(payments)[st.ID])
	sum.Name = st.Name()
	sum.Email = st.Email
	return sum, nil
}

// OutstandingReport computes, for the actor's society, per-student paid and
// unpaid totals with targeting applied, keeping only students with a positive
// outstanding balance. Rows are grouped by (year level, section) and sorted by
// year, then section, then name; the output is deterministic for a given
// snapshot regardless of record insertion order.
func (svc *Service) OutstandingReport(ctx context.Context, actor core.Actor) ([]CohortOutstanding, error) {
	if actor.IsStudent() {
		return nil, core.ErrPermissionDenied
	}

	var students []student.Student
	if err := core.Retry(ctx, func() (err error) {
		students, err = svc.stRepo.FilterStudents(ctx, student.QueryFilter{SocietyID: actor.SocietyID})
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "listing society students")
	}

	fees, payments, err := svc.societySnapshot(ctx, actor.SocietyID)
	if err != nil {
		return nil, err
	}
	byStudent := paymentsByStudent(payments)

	cohorts := make(map[[2]string]*CohortOutstanding)
	for _, st := range students {
		sum := summarize(st, fees, byStudent[st.ID])
		if len(sum.Fees) == 0 {
			continue // no applicable fees; not reportable
		}
		if sum.TotalUnpaid <= 0 {
			continue
		}
		key := [2]string{st.YearLevel, st.Section}
		cohort, ok := cohorts[key]
		if !ok {
			cohort = &CohortOutstanding{YearLevel: st.YearLevel, Section: st.Section}
			cohorts[key] = cohort
		}
		cohort.Students = append(cohort.Students, OutstandingBalance{
			StudentID:   st.ID,
			Name:        st.Name(),
			TotalPaid:   sum.TotalPaid,
			TotalUnpaid: sum.TotalUnpaid,
		})
	}

	report := make([]CohortOutstanding, 0, len(cohorts))
	for _, cohort := range cohorts {
		sort.Slice(cohort.Students, func(i, j int) bool {
			a, b := cohort.Students[i], cohort.Students[j]
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.StudentID < b.StudentID
		})
		report = append(report, *cohort)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].YearLevel != report[j].YearLevel {
			return report[i].YearLevel < report[j].YearLevel
		}
		return report[i].Section < report[j].Section
	})
	return report, nil
}

// societySnapshot reads all fees and payments of a society with bounded retry.
func (svc *Service) societySnapshot(ctx context.Context, societyID string) ([]fee.Fee, []Payment, error) {
	var fees []fee.Fee
	if err := core.Retry(ctx, func() (err error) {
		fees, err = svc.feeRepo.FilterFees(ctx, fee.QueryFilter{SocietyID: societyID})
		return err
	}); err != nil {
		return nil, nil, errors.Wrap(err, "listing society fees")
	}

	var payments []Payment
	if err := core.Retry(ctx, func() (err error) {
		payments, err = svc.repo.FilterPayments(ctx, QueryFilter{SocietyID: societyID})
		return err
	}); err != nil {
		return nil, nil, errors.Wrap(err, "listing society payments")
	}
	return fees, payments, nil
}

func paymentsByStudent(payments []Payment) map[string][]Payment {
	m := make(map[string][]Payment)
	for _, p := range payments {
		m[p.StudentID] = append(m[p.StudentID], p)
	}
	return m
}

// summarize applies the targeting rules to one student's payments: paid
// records always count, unpaid/pending records count only when the fee still
// applies to the student's cohort.
func summarize(st student.Student, fees []fee.Fee, payments []Payment) StudentSummary {
	feesByID := make(map[string]fee.Fee, len(fees))
	for _, f := range fees {
		feesByID[f.ID] = f
	}

	sum := StudentSummary{
		StudentID: st.ID,
		SocietyID: st.SocietyID,
		Payments:  []Payment{},
		Fees:      []fee.Fee{},
	}
	for _, p := range payments {
		f, ok := feesByID[p.FeeID]
		if !ok {
			continue // fee deleted; stray record does not count
		}
		if p.Status == StatusPaid {
			sum.TotalPaid += f.Amount
		} else {
			if !f.AppliesTo(st) {
				continue // stray record for another cohort stays hidden
			}
			sum.TotalUnpaid += f.Amount
		}
		sum.Payments = append(sum.Payments, p)
		sum.Fees = append(sum.Fees, f)
	}

	// deterministic output independent of store iteration order
	sort.Slice(sum.Payments, func(i, j int) bool { return sum.Payments[i].FeeID < sum.Payments[j].FeeID })
	sort.Slice(sum.Fees, func(i, j int) bool { return sum.Fees[i].ID < sum.Fees[j].ID })
	return sum
}
