package socialglow

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"libdb.so/socialglow/internal/led"
	"libdb.so/socialglow/internal/touchui"
)

// Config is the configuration for the socialglow board.
type Config struct {
	// Device is the path to the serial device of the LED controller.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// NumLEDs is the number of LEDs on the strip.
	NumLEDs int `toml:"num_leds"`
	// Rate is the sparkle animation rate in frames per second.
	Rate float64 `toml:"rate"`
	// Brightness scales the whole strip, 0 exclusive to 1 inclusive.
	// It defaults to 1.
	Brightness float64 `toml:"brightness"`
	// Statuses is the list of selectable statuses, in button order.
	Statuses []StatusConfig `toml:"status"`
	// Touch configures the touchscreen, if one is attached.
	Touch TouchConfig `toml:"touch"`
}

// StatusConfig is one selectable status.
type StatusConfig struct {
	// Name identifies the status and labels its button.
	Name string `toml:"name"`
	// Color is the LED color for the status, as "#RRGGBB".
	Color led.RGB `toml:"color"`
	// Background is the display background shown while the status is
	// selected.
	Background string `toml:"background"`
}

// TouchConfig is the touchscreen configuration.
type TouchConfig struct {
	// Port is the SPI port of the touch controller, e.g. "SPI0.0".
	// Empty means no touchscreen is attached.
	Port string `toml:"port"`
	// Raw converter bounds of the touchable area.
	MinX int `toml:"min_x"`
	MaxX int `toml:"max_x"`
	MinY int `toml:"min_y"`
	MaxY int `toml:"max_y"`
	// SwapAxes exchanges the X and Y axes for rotated panels.
	SwapAxes bool `toml:"swap_axes"`
}

// DefaultConfig returns the configuration matching the original board:
// a 24-LED strip sparkling at 12 frames per second, dimmed to a tenth,
// with the three social battery statuses.
func DefaultConfig() *Config {
	return &Config{
		Device:     "/dev/ttyACM0",
		Baud:       115200,
		NumLEDs:    24,
		Rate:       12,
		Brightness: 0.1,
		Statuses: []StatusConfig{
			{Name: "empty", Color: led.RGB{255, 0, 0}, Background: "images/empty.bmp"},
			{Name: "low", Color: led.RGB{255, 170, 0}, Background: "images/low.bmp"},
			{Name: "full", Color: led.RGB{0, 180, 0}, Background: "images/full.bmp"},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.NumLEDs <= 0 {
		return errors.New("num_leds must be positive")
	}
	if c.Rate <= 0 {
		return errors.New("rate must be positive")
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		return errors.New("brightness must be within [0, 1]")
	}
	if len(c.Statuses) == 0 {
		return errors.New("no statuses configured")
	}

	seen := make(map[string]bool, len(c.Statuses))
	for _, status := range c.Statuses {
		if status.Name == "" {
			return errors.New("status with an empty name")
		}
		if status.Name == touchui.BackName {
			return fmt.Errorf("status name %q collides with the back button", status.Name)
		}
		if seen[status.Name] {
			return fmt.Errorf("duplicate status %q", status.Name)
		}
		seen[status.Name] = true
	}

	return nil
}

// statusList converts the configured statuses for the UI layer.
func (c *Config) statusList() []touchui.Status {
	statuses := make([]touchui.Status, len(c.Statuses))
	for i, status := range c.Statuses {
		statuses[i] = touchui.Status{
			Name:       status.Name,
			Color:      status.Color,
			Background: status.Background,
		}
	}
	return statuses
}

// ParseConfig parses a configuration from a reader. Omitted brightness
// defaults to 1.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	if config.Brightness == 0 {
		config.Brightness = 1
	}
	return &config, nil
}
