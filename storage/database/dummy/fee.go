package dummydb

import (
	"context"

	"github.com/trezcool/okfines/core/fee"
)

type feeRepository struct {
	db *feeTable
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db.fee}
}

func (repo *feeRepository) CreateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) GetFeeByID(_ context.Context, id string) (fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.table[id]; ok {
		return *f, nil
	}
	return fee.Fee{}, fee.ErrNotFound
}

func (repo *feeRepository) FilterFees(_ context.Context, filter fee.QueryFilter) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var filtered []fee.Fee
	for _, f := range repo.db.table {
		if filter.SocietyID != "" && f.SocietyID != filter.SocietyID {
			continue
		}
		if filter.CreatedBy != "" && f.CreatedBy != filter.CreatedBy {
			continue
		}
		filtered = append(filtered, *f)
	}
	return filtered, nil
}

func (repo *feeRepository) UpdateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[f.ID]; !ok {
		return fee.Fee{}, fee.ErrNotFound
	}
	repo.db.table[f.ID] = &f
	return f, nil
}

func (repo *feeRepository) DeleteFeesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
