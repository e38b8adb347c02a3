package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/payment"
	"github.com/trezcool/okfines/core/student"
	"github.com/trezcool/okfines/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	id, name, email, pwd string,
	role core.Role,
	societyID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := core.Now()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		SocietyID: societyID,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	id, lastName, firstName, societyID, yearLevel, section string,
) student.Student {
	t.Helper()
	now := core.Now()
	st, err := repo.CreateStudent(context.Background(), student.Student{
		ID:        id,
		LastName:  lastName,
		FirstName: firstName,
		SocietyID: societyID,
		YearLevel: yearLevel,
		Section:   section,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateFee(
	t *testing.T,
	repo fee.Repository,
	id, description string,
	amount float64,
	societyID, createdBy, targetYearLevel, targetSection string,
) fee.Fee {
	t.Helper()
	f, err := repo.CreateFee(context.Background(), fee.Fee{
		ID:              id,
		Description:     description,
		Amount:          amount,
		SocietyID:       societyID,
		CreatedBy:       createdBy,
		TargetYearLevel: targetYearLevel,
		TargetSection:   targetSection,
		CreatedAt:       core.Now(),
	})
	if err != nil {
		t.Fatalf("CreateFee() failed: %v", err)
	}
	return f
}

func CreatePayment(
	t *testing.T,
	repo payment.Repository,
	id, studentID, feeID string,
	status payment.Status,
	societyID string,
) payment.Payment {
	t.Helper()
	now := core.Now()
	p := payment.Payment{
		ID:        id,
		StudentID: studentID,
		FeeID:     feeID,
		Status:    status,
		SocietyID: societyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == payment.StatusPaid {
		p.PaidAt = now
	}
	p, err := repo.CreatePayment(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return p
}
