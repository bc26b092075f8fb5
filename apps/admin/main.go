package main

import (
	"os"
	"time"

	dig_container "github.com/trezcool/shule/apps/api/di/dig"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
	appfs "github.com/trezcool/shule/fs"
	logsvc "github.com/trezcool/shule/services/logger"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewLogger(os.Stderr, conf.Debug, true).Named("admin")

	var closers dig_container.Closers
	cli := commandLine{
		out:         os.Stdout,
		migrateFunc: migrator(conf),
		nowFunc:     time.Now,
		loadFunc: func() (svc services, err error) {
			user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, logger)

			c := dig_container.New(func() *core.Config { return conf })
			err = c.Invoke(func(
				users *user.Service,
				members *staff.Service,
				students *student.Service,
				counter ident.Counter,
				cls dig_container.Closers,
			) {
				svc = services{users: users, staff: members, students: students, counter: counter}
				closers = cls
			})
			return svc, err
		},
	}

	err := cli.run(os.Args)
	if cerr := closers.Close(); cerr != nil {
		logger.Error("closing connections", cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
