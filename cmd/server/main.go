package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/grcops/go-session-server/auth"
	"github.com/grcops/go-session-server/internal/config"
	"github.com/grcops/go-session-server/server"
	"github.com/grcops/go-session-server/session"
	"github.com/grcops/go-session-server/token"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	codec, err := token.New(c.GetAuthSecret(),
		token.WithTTL(c.GetSessionTTL()),
		token.WithLeeway(c.GetClockSkewLeeway()),
		token.WithIssuer(c.GetTokenIssuer()),
	)
	if err != nil {
		// A missing or weak AUTH_SECRET is a deployment error; refuse to start.
		return fmt.Errorf("token.New: %w", err)
	}

	sessions := session.NewStore(codec,
		session.WithCookieNames(session.CookieNames{
			Auth:      c.GetAuthCookieName(),
			User:      c.GetUserCookieName(),
			Workspace: c.GetWorkspaceCookieName(),
		}),
		session.WithSecureCookies(c.IsProduction()),
		session.WithCookieTTL(c.GetSessionTTL()),
	)

	backend := auth.NewBackendClient(c.GetServerURL())
	authService := auth.NewService(backend, sessions)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, sessions, authService)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
