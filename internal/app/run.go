package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"canteen/internal/api"
	"canteen/internal/app/core"
	"canteen/internal/xpkg/config"
	"canteen/internal/xpkg/logger"
)

type params struct {
	serverParams *core.ServerParams
	cfg          *config.Config
}

// Execute starts the canteen service
func Execute(ctx context.Context, mylog logger.Logger, args []string) error {
	newCtx, close := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer close()

	params, err := parseParams(args)
	if err != nil {
		mylog.Action("command_parse_failed").Error("Invalid command received", err)
		return err
	}
	if err = validateParams(params); err != nil {
		mylog.Action("command_validation_failed").Error("Invalid command received", err)
		return err
	}
	mylog.Action("command_validation_completed").Info("Successfully validate params")

	server := api.NewServer(newCtx, params.cfg, params.serverParams, mylog)

	// Run server in goroutine
	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- server.Run()
	}()

	// Wait for signal or server crash
	select {
	case <-newCtx.Done():
		mylog.Action("shutdown_signal_received").Info("Shutdown signal received")
		return server.Stop(context.Background())
	case err := <-runErrCh:
		if err != nil && !errors.Is(err, api.ErrServerClosed) {
			mylog.Action("canteen_service_failed").Error("Server failed unexpectedly", err)
			return err
		}
		mylog.Action("server_stopped").Info("Server exited normally")
		return nil
	}
}

// Helper functions to validate cli params

// parseParams parse params from terminal
func parseParams(args []string) (*params, error) {
	fs := flag.NewFlagSet("canteen", flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")
	port := fs.Int("port", 0, "Port to run the canteen service, overrides config")

	if err := fs.Parse(args); err != nil {
		// User message
		return nil, core.ErrParseCmd
	}

	if *showHelp {
		fs.Usage()
		return nil, core.ErrHelp
	}

	return &params{
		serverParams: &core.ServerParams{
			Port:       *port,
			ConfigPath: *configPath,
		},
	}, nil
}

// validateParams validates params and loads the config. A missing config file
// falls back to environment variables.
func validateParams(params *params) error {
	cfg, err := config.LoadConfig(params.serverParams.ConfigPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.LoadEnv()
	} else if err != nil {
		return err
	}
	params.cfg = cfg

	if params.serverParams.Port == 0 {
		params.serverParams.Port = cfg.Server.Port
	}
	if params.serverParams.Port <= 0 || params.serverParams.Port >= 65536 {
		return fmt.Errorf("port must be in [0: 65,535]: %d", params.serverParams.Port)
	}

	return nil
}
