package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/aulaviva/aulaviva/apps/api/echo"
	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/core/escola"
	"github.com/aulaviva/aulaviva/core/turma"
	"github.com/aulaviva/aulaviva/core/user"
	emailsvc "github.com/aulaviva/aulaviva/services/email"
	logsvc "github.com/aulaviva/aulaviva/services/logger"
	"github.com/aulaviva/aulaviva/storage/database"
	sqlxrepos "github.com/aulaviva/aulaviva/storage/database/sqlx"
	"github.com/aulaviva/aulaviva/storage/object"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %+v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	// set up object storage
	deps := echoapi.ServerDeps{Conf: conf, Logger: logger}
	if conf.Storage.Backend == "s3" {
		s3Client, err := object.NewClient(context.Background(), conf.Storage)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up object storage: %v", err), err)
		}
		deps.S3Client = s3Client
		deps.ObjectStore = object.NewStore(s3Client, conf.Storage.Bucket)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	deps.UserSvc = user.NewService(conf, sqlxrepos.NewUserRepository(db), mailSvc, logger)
	deps.EscolaSvc = escola.NewService(sqlxrepos.NewEscolaRepository(db))
	deps.TurmaSvc = turma.NewService(sqlxrepos.NewTurmaRepository(db))
	deps.AulaSvc = aula.NewService(conf, sqlxrepos.NewAulaRepository(db), logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	deps.Validate, deps.Translator = core.NewValidator()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server, err := echoapi.NewServer(deps)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
