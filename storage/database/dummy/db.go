// Package dummydb is an in-memory implementation of the repositories, used by
// tests and local development.
package dummydb

import (
	"sync"

	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/payment"
	"github.com/trezcool/okfines/core/student"
	"github.com/trezcool/okfines/core/user"
)

type (
	DB struct {
		user    *userTable
		student *studentTable
		fee     *feeTable
		payment *paymentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	feeTable struct {
		sync.RWMutex
		table map[string]*fee.Fee
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Payment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{table: make(map[string]*student.Student)},
		fee:     &feeTable{table: make(map[string]*fee.Fee)},
		payment: &paymentTable{table: make(map[string]*payment.Payment)},
	}
	return db, nil
}
