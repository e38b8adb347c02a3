package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/okfines/core/fee"
	"github.com/trezcool/okfines/core/payment"
	"github.com/trezcool/okfines/core/student"
	"github.com/trezcool/okfines/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sqlx.DB
	usrRepo user.Repository
	stRepo  student.Repository
	feeRepo fee.Repository
	pmtRepo payment.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (goose commands)")
	fmt.Println("  adduser -name NAME -email EMAIL -role ROLE [-society ID] [-student ID] - update or create a user; password prompted")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  importstudents -file CSV -society ID [-apply] - import students from CSV; dry-run unless -apply")
	fmt.Println("  backfillsociety [-apply] - infer missing society on legacy fees/payments; dry-run unless -apply")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", "admin", "One of: admin, homeroom, student.")
	addUserSociety := addUserCmd.String("society", "", "The user's society ID.")
	addUserStudent := addUserCmd.String("student", "", "The linked student ID (student accounts).")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importCmd := flag.NewFlagSet("importstudents", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Path to the students CSV file.")
	importSociety := importCmd.String("society", "", "Society ID assigned to the imported students.")
	importApply := importCmd.Bool("apply", false, "Write changes; without it the import is a dry run.")

	backfillCmd := flag.NewFlagSet("backfillsociety", flag.ExitOnError)
	backfillApply := backfillCmd.Bool("apply", false, "Write changes; without it the backfill is a dry run.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, *addUserRole, *addUserSociety, *addUserStudent, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "importstudents":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" || *importSociety == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importFile, *importSociety, *importApply)
	case "backfillsociety":
		if err := backfillCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.backfillSociety(*backfillApply)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
