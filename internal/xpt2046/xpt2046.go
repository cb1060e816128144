// Package xpt2046 reads touch points from an XPT2046 resistive touch
// controller over SPI.
package xpt2046

import (
	"image"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Control bytes for 12-bit differential conversions.
const (
	cmdReadY  = 0x90
	cmdReadZ1 = 0xB0
	cmdReadZ2 = 0xC0
	cmdReadX  = 0xD0
)

// Calibration maps raw converter values to panel pixels.
type Calibration struct {
	// Raw converter bounds of the touchable area.
	MinX, MaxX int
	MinY, MaxY int
	// Panel size in pixels.
	Width, Height int
	// SwapAxes exchanges X and Y before mapping, for panels mounted
	// rotated relative to the digitizer.
	SwapAxes bool
	// Pressure below this threshold counts as "not touched".
	Threshold int
}

// DefaultCalibration fits the common 320x240 panels.
func DefaultCalibration() Calibration {
	return Calibration{
		MinX: 200, MaxX: 3900,
		MinY: 200, MaxY: 3900,
		Width: 320, Height: 240,
		Threshold: 100,
	}
}

// Device is an XPT2046 on an SPI port.
type Device struct {
	conn spi.Conn
	pen  gpio.PinIn // active-low pen interrupt, may be nil
	cal  Calibration
}

// New connects to the controller on the given port. pen is the
// optional PENIRQ pin; when wired it lets ReadTouch skip the SPI
// transfers entirely while nothing touches the panel.
func New(port spi.Port, pen gpio.PinIn, cal Calibration) (*Device, error) {
	conn, err := port.Connect(2*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to touch controller")
	}

	if cal.Width <= 0 || cal.Height <= 0 {
		return nil, errors.New("calibration panel size must be positive")
	}
	if cal.MaxX <= cal.MinX || cal.MaxY <= cal.MinY {
		return nil, errors.New("calibration raw bounds are inverted")
	}

	return &Device{conn: conn, pen: pen, cal: cal}, nil
}

// ReadTouch returns the current touch point in panel coordinates, or
// ok=false while the panel is not being touched. It blocks only for
// the SPI conversions themselves.
func (d *Device) ReadTouch() (image.Point, bool, error) {
	if d.pen != nil && d.pen.Read() == gpio.High {
		return image.Point{}, false, nil
	}

	pressure, err := d.pressure()
	if err != nil {
		return image.Point{}, false, err
	}
	if pressure < d.cal.Threshold {
		return image.Point{}, false, nil
	}

	x, err := d.sample(cmdReadX)
	if err != nil {
		return image.Point{}, false, err
	}
	y, err := d.sample(cmdReadY)
	if err != nil {
		return image.Point{}, false, err
	}
	if d.cal.SwapAxes {
		x, y = y, x
	}

	p := image.Point{
		X: scale(x, d.cal.MinX, d.cal.MaxX, d.cal.Width),
		Y: scale(y, d.cal.MinY, d.cal.MaxY, d.cal.Height),
	}
	return p, true, nil
}

// pressure estimates touch pressure from the two Z conversions.
func (d *Device) pressure() (int, error) {
	z1, err := d.convert(cmdReadZ1)
	if err != nil {
		return 0, err
	}
	z2, err := d.convert(cmdReadZ2)
	if err != nil {
		return 0, err
	}
	return z1 + 4095 - z2, nil
}

// sample takes the median of three conversions to tame the noisy
// resistive panel.
func (d *Device) sample(cmd byte) (int, error) {
	var v [3]int
	for i := range v {
		r, err := d.convert(cmd)
		if err != nil {
			return 0, err
		}
		v[i] = r
	}
	return median3(v[0], v[1], v[2]), nil
}

// convert runs one 12-bit conversion.
func (d *Device) convert(cmd byte) (int, error) {
	var rx [3]byte
	if err := d.conn.Tx([]byte{cmd, 0, 0}, rx[:]); err != nil {
		return 0, errors.Wrap(err, "spi transfer failed")
	}
	return (int(rx[1])<<8 | int(rx[2])) >> 3, nil
}

func scale(raw, min, max, size int) int {
	if raw < min {
		raw = min
	}
	if raw > max {
		raw = max
	}
	return (raw - min) * (size - 1) / (max - min)
}

func median3(a, b, c int) int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}
