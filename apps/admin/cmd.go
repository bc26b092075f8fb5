package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// services are the dependencies of the commands working on records. They are only loaded
// when such a command runs, so that `migrate` works on a database without schema.
type services struct {
	users    *user.Service
	staff    *staff.Service
	students *student.Service
	counter  ident.Counter
}

type commandLine struct {
	out         io.Writer
	migrateFunc func(ctx context.Context, command string, args ...string) error
	loadFunc    func() (services, error)
	nowFunc     func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]                    - run the database migrations (goose commands)")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-role ROLE] - create or re-activate a user, admin by default")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                   - reset user's password")
	fmt.Fprintln(cli.out, "  sequences show [-year YEAR]                  - print the identifier counters of a year")
	fmt.Fprintln(cli.out, "  sequences sync                               - raise the counters past the existing identifiers")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrateFunc(ctx, args[2], args[3:]...)

	case "adduser":
		addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
		email := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
		name := addUserCmd.String("name", "", "The user's name.")
		role := addUserCmd.String("role", user.RoleAdmin, "The user's role.")
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" || *name == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword(addUserCmd)
		if err != nil {
			return err
		}
		svc, err := cli.loadFunc()
		if err != nil {
			return err
		}
		return cli.addUser(ctx, svc, *name, *email, *role, pwd)

	case "resetpassword":
		resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
		email := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		svc, err := cli.loadFunc()
		if err != nil {
			return err
		}
		return cli.resetPassword(ctx, svc, *email, pwd)

	case "sequences":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		switch args[2] {
		case "show":
			showCmd := flag.NewFlagSet("sequences show", flag.ExitOnError)
			year := showCmd.Int("year", cli.nowFunc().Year(), "The year of the counters.")
			if err := showCmd.Parse(args[3:]); err != nil {
				return err
			}
			svc, err := cli.loadFunc()
			if err != nil {
				return err
			}
			return cli.showSequences(ctx, svc, *year)
		case "sync":
			svc, err := cli.loadFunc()
			if err != nil {
				return err
			}
			return cli.syncSequences(ctx, svc)
		}
		cli.printUsage()
		return errHelp

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) readPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) showSequences(ctx context.Context, svc services, year int) error {
	for _, kind := range ident.Kinds {
		current, err := svc.counter.Current(ctx, kind, year)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%s%d: %s\n", kind, year, strconv.FormatInt(current, 10))
	}
	return nil
}
