package main

import (
	"fmt"
	"log"
	"os"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/services/authapi"
	logsvc "github.com/serene-minds/dashboard/services/logger"
	"github.com/serene-minds/dashboard/storage/database"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	conf, err := core.NewConfig()
	if err != nil {
		return err
	}
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	cli := &commandLine{
		conf:   conf,
		logger: logger,
		auth:   authapi.NewClient(conf.AuthAPI),
		openDB: database.Open,
	}
	defer func() {
		if err := cli.close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}
