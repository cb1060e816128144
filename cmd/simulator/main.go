// Command simulator runs the full board loop in a terminal: the LED
// strip renders as a row of colored cells and the touchscreen is
// driven by mouse clicks. No hardware is needed.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"libdb.so/socialglow"
	"libdb.so/socialglow/internal/led"
	"libdb.so/socialglow/internal/touchui"
)

var config = ""

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file (optional)")
}

func main() {
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := socialglow.DefaultConfig()
	if config != "" {
		f, err := os.Open(config)
		if err != nil {
			return fmt.Errorf("failed to open config file: %w", err)
		}
		parsed, err := socialglow.ParseConfig(f)
		f.Close()
		if err != nil {
			return err
		}
		cfg = parsed
	}
	// Terminal cells have no real brightness, so render at full blast.
	cfg.Brightness = 1

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	// The terminal replaces stderr, so logs have nowhere to go.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sim := newSimulator(screen, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sim.pollEvents(cancel)

	loop, err := socialglow.NewLoop(cfg, logger, sim, sim, sim)
	if err != nil {
		return err
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Cell size of one panel pixel block: the 320x240 panel maps onto
// 80x30 terminal cells.
const (
	cellWidth  = 4
	cellHeight = 8

	// Rows above the panel area used by the LED strip.
	panelTop = 3
)

// simulator is the in-process board: it is the touchscreen, the
// display, and the LED strip at once.
type simulator struct {
	screen  tcell.Screen
	buttons []touchui.Button
	touches chan image.Point

	// UI state, mutated only by the loop goroutine.
	bgColor led.RGB
	bgImage string
	hidden  map[string]bool
	frame   []uint8
}

func newSimulator(screen tcell.Screen, cfg *socialglow.Config) *simulator {
	statuses := make([]touchui.Status, len(cfg.Statuses))
	for i, status := range cfg.Statuses {
		statuses[i] = touchui.Status{Name: status.Name, Color: status.Color}
	}

	return &simulator{
		screen:  screen,
		buttons: append(touchui.StatusButtons(statuses), touchui.BackButton()),
		touches: make(chan image.Point, 1),
		hidden:  make(map[string]bool),
		frame:   make([]uint8, 3*cfg.NumLEDs),
	}
}

// pollEvents feeds mouse clicks into the touch channel and cancels the
// loop on q, Escape or Ctrl-C.
func (s *simulator) pollEvents(cancel context.CancelFunc) {
	for {
		switch ev := s.screen.PollEvent().(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
				cancel()
				return
			case ev.Rune() == 'q':
				cancel()
				return
			}

		case *tcell.EventMouse:
			if ev.Buttons()&tcell.ButtonPrimary == 0 {
				break
			}
			cx, cy := ev.Position()
			if cy < panelTop {
				break
			}
			point := image.Pt(
				cx*cellWidth+cellWidth/2,
				(cy-panelTop)*cellHeight+cellHeight/2,
			)
			select {
			case s.touches <- point:
			default:
			}

		case *tcell.EventResize:
			s.screen.Sync()

		case nil:
			return
		}
	}
}

// ReadTouch implements socialglow.TouchScreen. The short sleep models
// the conversion time of a real panel and keeps the polling loop from
// spinning flat out.
func (s *simulator) ReadTouch() (image.Point, bool, error) {
	select {
	case p := <-s.touches:
		return p, true, nil
	default:
		time.Sleep(time.Millisecond)
		return image.Point{}, false, nil
	}
}

// WriteFrame implements led.FrameWriter.
func (s *simulator) WriteFrame(pix []uint8) error {
	copy(s.frame, pix)
	s.draw()
	return nil
}

// SetBackgroundColor implements touchui.Display.
func (s *simulator) SetBackgroundColor(c led.RGB) error {
	s.bgColor = c
	s.bgImage = ""
	s.draw()
	return nil
}

// SetBackgroundImage implements touchui.Display. There is no image
// decoding in the terminal; the image path itself is shown instead.
func (s *simulator) SetBackgroundImage(path string) error {
	s.bgImage = path
	s.draw()
	return nil
}

// SetGroupHidden implements touchui.Display.
func (s *simulator) SetGroupHidden(group string, hidden bool) error {
	s.hidden[group] = hidden
	s.draw()
	return nil
}

func (s *simulator) draw() {
	s.screen.Clear()

	s.drawStrip()

	if s.bgImage != "" {
		s.drawText(2, panelTop+1, tcell.StyleDefault, "background: "+s.bgImage)
	}
	if !s.hidden[touchui.GroupTitle] {
		s.drawText(2, panelTop+1, tcell.StyleDefault.Bold(true), "Social Battery")
	}
	if !s.hidden[touchui.GroupButtons] {
		for _, button := range s.buttons {
			if button.Name != touchui.BackName {
				s.drawButton(button)
			}
		}
	}
	if !s.hidden[touchui.GroupBack] {
		s.drawButton(s.buttons[len(s.buttons)-1])
	}

	s.drawText(0, panelTop+240/cellHeight+1, tcell.StyleDefault.Dim(true),
		"click a button; q to quit")

	s.screen.Show()
}

func (s *simulator) drawStrip() {
	style := tcell.StyleDefault
	s.drawText(0, 0, style, "LEDs:")

	for i := 0; i < len(s.frame)/3; i++ {
		c := tcell.NewRGBColor(
			int32(s.frame[3*i]),
			int32(s.frame[3*i+1]),
			int32(s.frame[3*i+2]),
		)
		cell := style.Background(c)
		s.screen.SetContent(2*i, 1, ' ', nil, cell)
		s.screen.SetContent(2*i+1, 1, ' ', nil, cell)
	}
}

func (s *simulator) drawButton(b touchui.Button) {
	minX := b.Rect.Min.X / cellWidth
	maxX := b.Rect.Max.X / cellWidth
	minY := panelTop + b.Rect.Min.Y/cellHeight
	maxY := panelTop + b.Rect.Max.Y/cellHeight

	style := tcell.StyleDefault.Background(tcell.NewRGBColor(
		int32(b.Fill[0]), int32(b.Fill[1]), int32(b.Fill[2])))

	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	labelX := (minX + maxX - len(b.Label)) / 2
	labelY := (minY + maxY) / 2
	s.drawText(labelX, labelY, style.Foreground(tcell.ColorWhite), b.Label)
}

func (s *simulator) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.screen.SetContent(x+i, y, r, nil, style)
	}
}
