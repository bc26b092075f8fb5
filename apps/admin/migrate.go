package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/storage/database"
)

// migrator runs goose commands on the configured database, creating it first when missing.
func migrator(conf *core.Config) func(ctx context.Context, command string, args ...string) error {
	return func(ctx context.Context, command string, args ...string) error {
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return err
		}
		db, err := database.Open(conf)
		if err != nil {
			return err
		}
		//goland:noinspection GoUnhandledErrorResult
		defer db.Close()
		return database.RunMigrations(ctx, db.DB, command, args...)
	}
}

// syncSequences raises the counters past the identifiers already issued, e.g. after importing
// legacy records.
func (cli *commandLine) syncSequences(ctx context.Context, svc services) error {
	members, err := svc.staff.Query(ctx, &staff.QueryFilter{}, nil)
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	students, err := svc.students.Query(ctx, &student.QueryFilter{}, nil)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	ids := make([]string, 0, len(members)+len(students))
	for _, m := range members {
		ids = append(ids, m.EmployeeID)
	}
	for _, s := range students {
		ids = append(ids, s.AdmissionNumber)
	}

	skipped, err := ident.Sync(ctx, svc.counter, ids)
	if err != nil {
		return err
	}
	for _, id := range skipped {
		fmt.Fprintf(cli.out, "skipped malformed identifier %q\n", id)
	}
	fmt.Fprintf(cli.out, "synced %d identifiers\n", len(ids)-len(skipped))
	return nil
}
