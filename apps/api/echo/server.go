package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/core/escola"
	"github.com/aulaviva/aulaviva/core/turma"
	"github.com/aulaviva/aulaviva/core/user"
	"github.com/aulaviva/aulaviva/storage/object"
)

type (
	ServerDeps struct {
		Conf      *core.Config
		Logger    core.Logger
		UserSvc   user.ServiceInterface
		EscolaSvc *escola.Service
		TurmaSvc  *turma.Service
		AulaSvc   *aula.Service
		// ObjectStore and S3Client are nil when the storage backend is "file"
		ObjectStore *object.Store
		S3Client    *s3.Client
		Validate    *validator.Validate
		Translator  ut.Translator

		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) (*Server, error) {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setup() error {
	conf := s.deps.Conf
	initJWT(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.Validate, s.deps.Translator)
	registerEscolaAPI(v1, jwt, s.deps.EscolaSvc)
	registerTurmaAPI(v1, jwt, s.deps.TurmaSvc, s.deps.Validate)
	registerAulaAPI(v1, jwt, s.deps.AulaSvc, s.deps.ObjectStore, conf.Storage, s.deps.Validate)

	composer := newStoreComposer(conf, s.deps.S3Client)
	return registerUploadAPI(v1, jwt, s.deps.AulaSvc, composer)
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// SignalShutdown triggers a graceful shutdown, as if a SIGTERM was received.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to AulaViva API!")
}
