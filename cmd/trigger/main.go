// Command trigger uploads selected images to the image server as the current
// image and reloads the pages showing it.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stegoweb/imagetrigger/internal/gateway"
	"github.com/stegoweb/imagetrigger/internal/modules/reload"
	"github.com/stegoweb/imagetrigger/internal/modules/upload"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/interfaces/cli"
	"github.com/stegoweb/imagetrigger/internal/shared/infrastructure/config"
	"github.com/stegoweb/imagetrigger/internal/shared/metrics"
)

type options struct {
	interactive bool
	serve       bool
	refs        []string
}

func main() {
	interactive := flag.Bool("i", false, "read selections from stdin")
	serve := flag.Bool("serve", true, "run the live-reload and metrics server")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: trigger [-i] [-serve=false] [file ...]")
		fmt.Fprintln(os.Stderr, "Each file argument is one selection. Configuration is read from the environment and .env.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{interactive: *interactive, serve: *serve, refs: flag.Args()}
	if err := run(ctx, cfg, opts, os.Stdin, os.Stdout, prometheus.DefaultRegisterer); err != nil {
		log.Fatalf("trigger: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, opts options, in io.Reader, out io.Writer, reg prometheus.Registerer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := &http.Client{Timeout: cfg.Upload.Timeout}

	reloadModule, err := reload.NewModule(ctx, cfg, client)
	if err != nil {
		return fmt.Errorf("failed to initialize reload: %w", err)
	}
	defer reloadModule.Close()
	if err := reloadModule.Run(ctx); err != nil {
		return fmt.Errorf("failed to start reload relay: %w", err)
	}

	uploadMetrics := metrics.NewUploadMetrics(reg)
	uploadModule, err := upload.NewModule(ctx, cfg.Upload, cfg.Source, client, reloadModule.Service(), uploadMetrics)
	if err != nil {
		return fmt.Errorf("failed to initialize upload: %w", err)
	}
	log.Printf("Uploading selections to %s", uploadModule.Endpoint())

	serverDone := make(chan error, 1)
	if opts.serve {
		gatherer, _ := reg.(prometheus.Gatherer)
		handler := gateway.SetupRoutes(gateway.RouterConfig{
			ReloadHandler:  reloadModule.HTTPHandler(),
			Gatherer:       gatherer,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})
		server := gateway.NewServer(cfg.Server.Port, handler)
		go func() { serverDone <- server.Start(ctx) }()
	} else {
		close(serverDone)
	}

	trigger := uploadModule.Trigger()
	c := cli.New(trigger, uploadModule.Resolver(), in, out)

	for _, ref := range opts.refs {
		c.Select(ctx, []string{ref})
	}
	if opts.interactive {
		if err := c.Run(ctx); err != nil {
			log.Printf("reading selections: %v", err)
		}
	}

	trigger.Wait()

	// Nothing to select from: keep serving live reloads until stopped.
	if opts.serve && !opts.interactive && len(opts.refs) == 0 {
		<-ctx.Done()
	}

	cancel()
	return <-serverDone
}
