package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"libdb.so/socialglow"
	"libdb.so/socialglow/internal/xpt2046"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var (
	config  = "socialglow.toml"
	verbose = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	touch, closeTouch, err := openTouch(cfg)
	if err != nil {
		return err
	}
	if closeTouch != nil {
		defer closeTouch()
	}

	d, err := socialglow.NewDaemon(cfg, slog.Default(), touch, nil)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*socialglow.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return socialglow.ParseConfig(f)
}

// openTouch sets up the touchscreen, if one is configured. The second
// return value closes the underlying SPI port.
func openTouch(cfg *socialglow.Config) (socialglow.TouchScreen, func() error, error) {
	if cfg.Touch.Port == "" {
		slog.Warn("no touch port configured, running without a touchscreen")
		return nil, nil, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(cfg.Touch.Port)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open touch SPI port: %w", err)
	}

	cal := xpt2046.DefaultCalibration()
	if cfg.Touch.MaxX > 0 {
		cal.MinX, cal.MaxX = cfg.Touch.MinX, cfg.Touch.MaxX
		cal.MinY, cal.MaxY = cfg.Touch.MinY, cfg.Touch.MaxY
	}
	cal.SwapAxes = cfg.Touch.SwapAxes

	dev, err := xpt2046.New(port, nil, cal)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("failed to set up touch controller: %w", err)
	}

	return dev, port.Close, nil
}
