package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/student"
	"github.com/trezcool/okfines/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, role, societyID, studentID, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	if !core.Role(role).Valid() {
		return errors.Errorf("unknown role %q", role)
	}
	if studentID != "" {
		sid, err := student.NormalizeID(studentID)
		if err != nil {
			return err
		}
		studentID = sid
	}

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		now := core.Now()
		active := true
		usr = user.User{
			ID:        uuid.New().String(),
			Name:      name,
			Email:     email,
			Role:      core.Role(role),
			SocietyID: societyID,
			StudentID: studentID,
			IsActive:  &active,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	// existing account: reactivate and reset the password
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = core.Now()
	active := true
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &active)
	return err
}
