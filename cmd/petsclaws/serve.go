package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dreamware/petsclaws/internal/client"
	"github.com/dreamware/petsclaws/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			if err := a.cfg.ValidateServe(); err != nil {
				return err
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config)")
	return cmd
}

// serve runs the API until ctx is cancelled, then shuts down gracefully.
func (a *app) serve(ctx context.Context) error {
	shop, store, err := a.openShop(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if !a.verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	tokens := httpapi.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.GetTokenTTL())
	api := httpapi.New(shop, store, tokens, a.logger.Named("http"))

	httpSrv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("petsclaws listening",
			zap.String("addr", a.cfg.Listen),
			zap.String("store", a.cfg.Store.Driver))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logFatal("listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("petsclaws stopped")
	return nil
}

func (a *app) pingCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that a petsclaws server is healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = baseURL(a.cfg.Listen)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), client.DefaultTimeout)
			defer cancel()
			if err := client.New(addr).Health(ctx); err != nil {
				return fmt.Errorf("ping %s: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is healthy\n", addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Server base URL (default: derived from the listen address)")
	return cmd
}

// baseURL turns a listen address such as ":8080" into a URL on localhost.
func baseURL(listen string) string {
	if strings.HasPrefix(listen, "http://") || strings.HasPrefix(listen, "https://") {
		return listen
	}
	if strings.HasPrefix(listen, ":") {
		return "http://localhost" + listen
	}
	return "http://" + listen
}
