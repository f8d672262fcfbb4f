package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/errors"

	echoweb "github.com/serene-minds/dashboard/apps/dashboard/echo"
	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/core/user"
	"github.com/serene-minds/dashboard/services/authapi"
	logsvc "github.com/serene-minds/dashboard/services/logger"
	"github.com/serene-minds/dashboard/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run() error {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DASHBOARD : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := storage.Open(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "opening session storage")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("closing session storage", err)
		}
	}()

	table, err := route.DefaultTable()
	if err != nil {
		return errors.Wrap(err, "loading route table")
	}
	guard := route.NewGuard(table, route.OptionsFromConfig(conf.Session))

	sessions := session.NewManager(store, logger, conf.Session.InitTimeout)
	go sessions.Run(ctx, conf.Session.SweepInterval, conf.Session.IdleTimeout)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("sessionStore").Set(conf.Session.Store)
	expvar.Publish("sessions", expvar.Func(func() interface{} { return sessions.Len() }))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Dashboard Service

	server := echoweb.NewServer(echoweb.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Sessions:   sessions,
		Guard:      guard,
		Auth:       authapi.NewClient(conf.AuthAPI),
		Validate:   validate,
		Translator: translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		return errors.Wrap(err, "server error")

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancelShutdown()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				return errors.Wrap(err, "could not force stop server")
			}
		}
	}
	return nil
}
