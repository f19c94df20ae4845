package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/petasbytes/advisor-relay/internal/config"
	"github.com/petasbytes/advisor-relay/internal/provider"
	"github.com/petasbytes/advisor-relay/internal/relay"
	"github.com/petasbytes/advisor-relay/internal/runner"
	"github.com/petasbytes/advisor-relay/internal/server"
	"github.com/petasbytes/advisor-relay/internal/store"
	"github.com/petasbytes/advisor-relay/memory"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat UI, admin viewer and chat API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :5000, or $PORT)")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := a.logger

	st, err := store.Open(a.cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Initialize(parent); err != nil {
		logger.Warn("database init failed; continuing without a ready message log", "path", st.Path(), "err", err)
	}

	// The credential is read on first chat, not at startup.
	completer := provider.NewLazy(func() (provider.Completer, error) {
		return provider.New(config.ProviderSettings(a.v, a.cfg))
	})
	step := runner.New(completer, a.cfg.Model, a.cfg.TokenBudget, logger)
	rl := relay.New(st, memory.NewRegistry(memory.PersonaPrompt), step, logger)

	if a.cfg.LogLevel > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := server.New(rl, st, logger).Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		select {
		case <-sigch:
			logger.Info("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "provider", a.cfg.Provider, "model", a.cfg.Model, "db", st.Path())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
