// Package touchui implements the touchscreen selector: button layout,
// hit-testing, and the two-screen flow between the status selector and
// the per-status screen.
package touchui

import (
	"image"

	"libdb.so/socialglow/internal/led"
)

// Status is one selectable status entry.
type Status struct {
	// Name identifies the status and labels its button.
	Name string
	// Color is the LED animation color for the status.
	Color led.RGB
	// Background is the display background shown while the status is
	// selected, usually an image path.
	Background string
}

// Button is a rectangular touch target.
type Button struct {
	Name  string
	Label string
	Rect  image.Rectangle
	Fill  led.RGB
}

// Contains reports whether the point hits the button.
func (b Button) Contains(p image.Point) bool {
	return p.In(b.Rect)
}

// Layout constants, sized for a 320x240 portrait panel.
const (
	PanelWidth  = 320
	PanelHeight = 240

	buttonWidth  = 320
	buttonHeight = 40
	layoutOffset = 10
)

// BackName is the name of the button that leaves a status screen.
const BackName = "back"

// StatusButtons lays out one full-width button per status, stacked
// below the title row.
func StatusButtons(statuses []Status) []Button {
	x := layoutOffset
	y := layoutOffset + buttonHeight*3/2

	buttons := make([]Button, 0, len(statuses))
	for _, status := range statuses {
		buttons = append(buttons, Button{
			Name:  status.Name,
			Label: status.Name,
			Rect:  image.Rect(x, y, x+buttonWidth, y+buttonHeight),
			Fill:  status.Color,
		})
		y += buttonHeight
	}
	return buttons
}

// BackButton returns the button that leaves a status screen.
func BackButton() Button {
	return Button{
		Name:  BackName,
		Label: BackName,
		Rect:  image.Rect(10, 200, 90, 240),
		Fill:  led.Black,
	}
}
