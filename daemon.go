package socialglow

import (
	"context"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/socialglow/internal/touchui"
	"libdb.so/socialglow/ledserial"
)

// Daemon runs the device loop against a real LED controller on a
// serial port.
type Daemon struct {
	cfg     *Config
	logger  *slog.Logger
	touch   TouchScreen
	display touchui.Display
}

// NewDaemon creates a new daemon. touch may be nil for boards without
// a touchscreen; display may be nil, in which case display updates are
// only logged.
func NewDaemon(cfg *Config, logger *slog.Logger, touch TouchScreen, display touchui.Display) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if cfg.Device == "" {
		return nil, errors.New("no serial device configured")
	}
	if cfg.Baud <= 0 {
		return nil, errors.New("baud must be positive")
	}

	if display == nil {
		display = touchui.LogDisplay{Logger: logger}
	}

	return &Daemon{
		cfg:     cfg,
		logger:  logger,
		touch:   touch,
		display: display,
	}, nil
}

// Run starts the daemon. It blocks until the given context is
// canceled or the controller reports an unrecoverable error.
func (d *Daemon) Run(ctx context.Context) error {
	port, err := serial.Open(d.cfg.Device, &serial.Mode{
		BaudRate: d.cfg.Baud,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open serial port")
	}
	defer port.Close()

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		d.logger.Debug("closing serial port")
		if err := port.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})

	errg.Go(func() error {
		return d.readPackets(ctx, port)
	})
	errg.Go(func() error {
		return d.deviceLoop(ctx, port)
	})

	return errg.Wait()
}

// deviceLoop initializes the strip and runs the cooperative loop,
// flushing frames over the serial port.
func (d *Daemon) deviceLoop(ctx context.Context, port serial.Port) error {
	d.logger.Debug("sending initialize packet", "num_leds", d.cfg.NumLEDs)
	err := ledserial.WriteHostPacket(port, ledserial.InitializePacket{
		NumLEDs: uint16(d.cfg.NumLEDs),
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize strip")
	}

	loop, err := NewLoop(d.cfg, d.logger, d.touch, d.display, ledserial.FrameWriter{W: port})
	if err != nil {
		return err
	}

	return loop.Run(ctx)
}

// readPackets drains controller-to-board packets for the lifetime of
// the daemon. Acks and logs are only logged; error and panic packets
// bring the daemon down.
func (d *Daemon) readPackets(ctx context.Context, port serial.Port) error {
	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	for ctx.Err() == nil {
		p, err := ledserial.ReadControllerPacket(port)
		if err != nil {
			// A short read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		switch p := p.(type) {
		case ledserial.AckPacket:
			d.logger.Debug(
				"received ack from controller",
				"acked_for", p.For)

		case ledserial.LogPacket:
			d.logger.Info(
				"received log from controller",
				"message", p.Message)

		case ledserial.ErrorPacket:
			d.logger.Warn(
				"controller reported error",
				"message", p.Message)
			return errors.New("controller reported error")

		case ledserial.PanicPacket:
			d.logger.Error(
				"controller unrecoverably panicked",
				"message", p.Message)
			return errors.New("controller panicked")

		default:
			return errors.Errorf("received unknown packet from controller: %s", p.Type())
		}
	}

	return ctx.Err()
}
