package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"weatherbot/internal/config"
	"weatherbot/internal/http-server/handlers/errors"
	"weatherbot/internal/http-server/handlers/status"
	"weatherbot/internal/http-server/middleware/authenticate"
	"weatherbot/internal/http-server/middleware/timeout"
	"weatherbot/internal/lib/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	status.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Use(authenticate.New(log, handler))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/status", func(v1 chi.Router) {
		v1.Get("/quota", status.Quota(log, handler))
		v1.Get("/actor/{id}", status.Actor(log, handler))
	})
	router.Route("/actor", func(v1 chi.Router) {
		v1.Post("/{id}/unblock", status.Unblock(log, handler))
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
