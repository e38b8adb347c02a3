package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/payment"
	"github.com/trezcool/okfines/core/student"
	"github.com/trezcool/okfines/core/user"
)

// backfillSociety fills in the society on legacy fees and payments created
// before the society column existed. A fee inherits its creator's society; a
// payment inherits its fee's society, falling back to its student's.
func (cli *commandLine) backfillSociety(apply bool) error {
	ctx := context.Background()

	feeFixes, err := cli.collectFeeFixes(ctx)
	if err != nil {
		return err
	}
	pmtFixes, err := cli.collectPaymentFixes(ctx)
	if err != nil {
		return err
	}

	if !apply {
		logger.Printf("dry run: %d fees and %d payments would be updated; re-run with -apply", len(feeFixes), len(pmtFixes))
		return nil
	}

	for id, societyID := range feeFixes {
		if _, err := cli.db.ExecContext(ctx, `UPDATE fee SET society_id = $2 WHERE id = $1`, id, societyID); err != nil {
			return errors.Wrapf(err, "updating fee %s", id)
		}
	}
	for id, societyID := range pmtFixes {
		if _, err := cli.db.ExecContext(ctx, `UPDATE payment SET society_id = $2 WHERE id = $1`, id, societyID); err != nil {
			return errors.Wrapf(err, "updating payment %s", id)
		}
	}

	logger.Printf("backfill complete: %d fees and %d payments updated", len(feeFixes), len(pmtFixes))
	return nil
}

// collectFeeFixes maps fee ID to the society inferred from the fee's creator.
func (cli *commandLine) collectFeeFixes(ctx context.Context) (map[string]string, error) {
	fees, err := cli.feeRepo.FilterFees(ctx, fee.QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "listing fees")
	}

	fixes := make(map[string]string)
	for _, f := range fees {
		if f.SocietyID != "" || f.CreatedBy == "" {
			continue
		}
		usr, err := cli.usrRepo.GetUserByID(ctx, f.CreatedBy)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				logger.Printf("fee %s: creator %s not found, skipping", f.ID, f.CreatedBy)
				continue
			}
			return nil, errors.Wrapf(err, "finding creator of fee %s", f.ID)
		}
		if usr.SocietyID == "" {
			continue
		}
		fixes[f.ID] = usr.SocietyID
	}
	return fixes, nil
}

// collectPaymentFixes maps payment ID to the society inferred from the
// payment's fee, or failing that, its student.
func (cli *commandLine) collectPaymentFixes(ctx context.Context) (map[string]string, error) {
	payments, err := cli.pmtRepo.FilterPayments(ctx, payment.QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "listing payments")
	}
	feeFixes, err := cli.collectFeeFixes(ctx)
	if err != nil {
		return nil, err
	}

	fixes := make(map[string]string)
	for _, p := range payments {
		if p.SocietyID != "" {
			continue
		}

		if f, err := cli.feeRepo.GetFeeByID(ctx, p.FeeID); err == nil {
			societyID := f.SocietyID
			if societyID == "" {
				societyID = feeFixes[f.ID]
			}
			if societyID != "" {
				fixes[p.ID] = societyID
				continue
			}
		} else if errors.Cause(err) != fee.ErrNotFound {
			return nil, errors.Wrapf(err, "finding fee of payment %s", p.ID)
		}

		if st, err := cli.stRepo.GetStudentByID(ctx, p.StudentID); err == nil {
			if st.SocietyID != "" {
				fixes[p.ID] = st.SocietyID
			}
		} else if errors.Cause(err) != student.ErrNotFound {
			return nil, errors.Wrapf(err, "finding student of payment %s", p.ID)
		}
	}
	return fixes, nil
}
