package main

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/okfines/core"
	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/payment"
	"github.com/trezcool/okfines/core/user"
	dummydb "github.com/trezcool/okfines/storage/database/dummy"
)

func setup(t *testing.T) (*commandLine, *dummydb.DB) {
	t.Helper()
	logger = log.New(os.Stdout, "ADMIN-TEST : ", 0)

	db, err := dummydb.Open()
	require.NoError(t, err)

	return &commandLine{
		usrRepo: dummydb.NewUserRepository(db),
		stRepo:  dummydb.NewStudentRepository(db),
		feeRepo: dummydb.NewFeeRepository(db),
		pmtRepo: dummydb.NewPaymentRepository(db),
	}, db
}

func Test_commandLine_run_usage(t *testing.T) {
	cli, _ := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"admin"}},
		{"unknown command", []string{"admin", "frobnicate"}},
		{"migrate without goose command", []string{"admin", "migrate"}},
		{"adduser without email", []string{"admin", "adduser", "-name", "Jo"}},
		{"resetpassword without email", []string{"admin", "resetpassword"}},
		{"importstudents without file", []string{"admin", "importstudents", "-society", "soc-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, errHelp, cli.run(tt.args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("V3ry$ecret!"), nil }

	require.NoError(t, cli.run([]string{"admin", "adduser", "-name", "Awa Diop", "-email", "Awa@Example.COM", "-role", "admin", "-society", "soc-1"}))

	usr, err := cli.usrRepo.GetUserByEmail(ctx, "awa@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Awa Diop", usr.Name)
	assert.Equal(t, core.RoleAdmin, usr.Role)
	assert.Equal(t, "soc-1", usr.SocietyID)
	require.NotNil(t, usr.IsActive)
	assert.True(t, *usr.IsActive)
	assert.NoError(t, usr.CheckPassword("V3ry$ecret!"))

	// re-running with the same email resets the password instead of duplicating
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("An0ther$ecret!"), nil }
	require.NoError(t, cli.run([]string{"admin", "adduser", "-name", "Awa Diop", "-email", "awa@example.com", "-role", "admin"}))

	users, err := cli.usrRepo.FilterUsers(ctx, user.QueryFilter{Search: "awa"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NoError(t, users[0].CheckPassword("An0ther$ecret!"))
}

func Test_commandLine_addUser_badRole(t *testing.T) {
	cli, _ := setup(t)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("V3ry$ecret!"), nil }

	err := cli.run([]string{"admin", "adduser", "-name", "Jo", "-email", "jo@example.com", "-role", "principal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	usr := user.User{ID: "u1", Name: "Jo", Email: "jo@example.com", Role: core.RoleHomeroom, CreatedAt: core.Now(), UpdatedAt: core.Now()}
	require.NoError(t, usr.SetPassword("0ldPassword!"))
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	require.NoError(t, err)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("N3wPassword!"), nil }
	require.NoError(t, cli.run([]string{"admin", "resetpassword", "-email", "jo@example.com"}))

	usr, err = cli.usrRepo.GetUserByEmail(ctx, "jo@example.com")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("N3wPassword!"))
	assert.Error(t, usr.CheckPassword("0ldPassword!"))
}

func Test_readStudentCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"ID,lastName,firstName,middleName,studentNum,rfid,programID,collegeID,yearLevelID,sectionID",
		"1,Mensah,Kofi,A,MMC2021-00653,000111,BSIT,CCS,2,B",
		"2,Okafor,Ada,,MMC2025-0101,000222,BSCS,CCS,1,A",  // short suffix gets padded
		"3,Diallo,,,not-an-id,000333,BSIT,CCS,3,C",        // bad ID
		"4,,Sam,,MMC2022-00444,000444,BSIT,CCS,4,D",       // missing last name
	}, "\n")

	rows, badRows, err := readStudentCSV(strings.NewReader(csvData), "soc-1")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "MMC2021-00653", rows[0].ID)
	assert.Equal(t, "Mensah", rows[0].LastName)
	assert.Equal(t, "Kofi", rows[0].FirstName)
	assert.Equal(t, "2", rows[0].YearLevel)
	assert.Equal(t, "B", rows[0].Section)
	assert.Equal(t, "soc-1", rows[0].SocietyID)
	assert.Equal(t, "MMC2025-00101", rows[1].ID)

	require.Len(t, badRows, 2)
	assert.Contains(t, badRows[0], "line 4")
	assert.Contains(t, badRows[1], "line 5")
	assert.Contains(t, badRows[1], "missing last name")
}

func Test_commandLine_backfillSociety_dryRun(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	admin := user.User{ID: "u-admin", Name: "Awa", Email: "awa@example.com", Role: core.RoleAdmin, SocietyID: "soc-1", CreatedAt: core.Now(), UpdatedAt: core.Now()}
	_, err := cli.usrRepo.CreateUser(ctx, admin)
	require.NoError(t, err)

	// legacy fee without a society, created by the admin
	_, err = cli.feeRepo.CreateFee(ctx, fee.Fee{ID: "f1", Description: "Fines", Amount: 20, CreatedBy: "u-admin", CreatedAt: core.Now()})
	require.NoError(t, err)
	// legacy payment without a society, pointing at the legacy fee
	_, err = cli.pmtRepo.CreatePayment(ctx, payment.Payment{ID: "p1", StudentID: "MMC2021-00653", FeeID: "f1", Status: payment.StatusUnpaid, CreatedAt: core.Now(), UpdatedAt: core.Now()})
	require.NoError(t, err)

	feeFixes, err := cli.collectFeeFixes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f1": "soc-1"}, feeFixes)

	pmtFixes, err := cli.collectPaymentFixes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p1": "soc-1"}, pmtFixes)

	// dry run never needs the SQL handle
	require.NoError(t, cli.run([]string{"admin", "backfillsociety"}))
}
