package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/cmdk/pkg/api"
	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/navigation"
	"github.com/rubiojr/cmdk/pkg/realtime"
	"github.com/rubiojr/cmdk/pkg/sources/actions"
	"github.com/rubiojr/cmdk/pkg/sources/forms"
	"github.com/rubiojr/cmdk/pkg/sources/routes"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the palette over HTTP and websockets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: "8080",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to",
				Value: "localhost",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("host"), c.String("port"))
		},
	}
}

// storeKeys are forwarded to websocket clients when they change.
var storeKeys = []string{
	actions.KeyModal,
	actions.KeyDarkMode,
	actions.KeyTranslationMarkers,
}

func serve(ctx context.Context, configPath, host, port string) error {
	logger := log.ForService("serve")

	p, err := newPipeline(configPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warnf("failed to close pipeline: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(16)

	for _, key := range storeKeys {
		unsubscribe := p.store.Subscribe(key, func(value any) {
			hub.Broadcast(realtime.StoreEvent(key, value))
		})
		defer unsubscribe()
	}
	unsubscribe := p.store.Subscribe(forms.KeyFieldMap, func(any) {
		hub.Broadcast(realtime.ReloadEvent("forms"))
	})
	defer unsubscribe()

	if path := p.cfg.Search.NavigationFile; path != "" {
		go func() {
			err := navigation.Watch(ctx, path, func(defs []routes.Definition) {
				p.routes.SetDefinitions(defs)
				hub.Broadcast(realtime.ReloadEvent("routes"))
			})
			if err != nil {
				logger.Warnf("watching %s: %v", path, err)
			}
		}()
	}

	apiServer := api.NewServer(api.Config{
		Registry: p.registry,
		Search:   p.search,
		Actions:  p.actions,
		Reports:  p.db,
		Hub:      hub,
		Palette:  p.paletteOptions(),
		Context:  p.cfg.Context(),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", host, port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting palette server on http://%s:%s", host, port)
		logger.Infof("  GET /api/search?q=... - Search the palette")
		logger.Infof("  GET /api/sources - List sources")
		logger.Infof("  GET /api/actions - List commands")
		logger.Infof("  GET /api/reports - Recent error reports")
		logger.Infof("  GET /api/palette/ws - Palette session over websocket")
		logger.Infof("  GET /health - Health check")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("Shutting down palette server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
