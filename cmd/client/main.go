package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/server"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running client: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Client stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	store, err := newStore(c, logger)
	if err != nil {
		return err
	}

	authClient, err := auth.New(c.GetAPIBaseURL(),
		auth.WithTimeout(secondsOrDefault(c.GetRequestTimeout(), 15*time.Second)),
		auth.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(authClient, store,
		session.WithClockSkew(secondsOrDefault(c.GetClockSkew(), credentials.DefaultClockSkew)),
		session.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	// Run the startup probe in the background; the route guard shows a
	// holding page until it settles.
	go func() {
		if err := sessions.Initialize(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("session probe did not restore a session")
		}
	}()

	handler, err := server.New(c, authClient, sessions)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func newStore(c config.Config, logger zerolog.Logger) (credentials.Store, error) {
	if addr := c.GetRedisAddr(); addr != "" {
		return credentials.NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}))
	}
	return credentials.NewFileStore(c.GetTokenFile(), credentials.WithFileStoreLogger(logger))
}

func secondsOrDefault(value string, fallback time.Duration) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func listenAndServe(server *http.Server) error {
	log.Printf("Client UI listening on %s\n", server.Addr)
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
