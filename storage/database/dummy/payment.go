package dummydb

import (
	"context"

	"github.com/trezcool/okfines/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) pairExists(studentID, feeID string) bool {
	for _, p := range repo.db.table {
		if p.StudentID == studentID && p.FeeID == feeID {
			return true
		}
	}
	return false
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.pairExists(p.StudentID, p.FeeID) {
		return payment.Payment{}, payment.ErrExists
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) CreatePaymentBatch(_ context.Context, ps []payment.Payment) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var created int
	for i := range ps {
		p := ps[i]
		if repo.pairExists(p.StudentID, p.FeeID) {
			continue
		}
		repo.db.table[p.ID] = &p
		created++
	}
	return created, nil
}

func (repo *paymentRepository) GetPaymentByPair(_ context.Context, studentID, feeID string) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.table {
		if p.StudentID == studentID && p.FeeID == feeID {
			return *p, nil
		}
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) FilterPayments(_ context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var filtered []payment.Payment
	for _, p := range repo.db.table {
		if filter.SocietyID != "" && p.SocietyID != filter.SocietyID {
			continue
		}
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.FeeID != "" && p.FeeID != filter.FeeID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		filtered = append(filtered, *p)
	}
	return filtered, nil
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}
