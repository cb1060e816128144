package touchui

import (
	"image"

	"libdb.so/socialglow/internal/led"
)

// Display is the output side of the UI: a full-screen background plus
// named widget groups that are shown and hidden as a unit. The actual
// rendering of buttons and labels is the display's business.
type Display interface {
	SetBackgroundColor(c led.RGB) error
	SetBackgroundImage(path string) error
	SetGroupHidden(group string, hidden bool) error
}

// Widget group names used by the controller.
const (
	GroupTitle   = "title"
	GroupButtons = "buttons"
	GroupBack    = "back"
)

// Controller routes touch points to buttons and keeps the display in
// sync with the selected status. It is single-threaded: all methods
// must be called from the loop that polls the touchscreen.
type Controller struct {
	display  Display
	statuses map[string]Status
	buttons  []Button
	onSelect func(Status)

	// background is the selector screen's backdrop color.
	background led.RGB
}

// NewController creates a controller for the given statuses, in button
// order. onSelect is invoked whenever a status button is hit; it is not
// invoked for the back button, so the animation keeps its last color
// while the selector is shown again.
func NewController(display Display, statuses []Status, onSelect func(Status)) *Controller {
	byName := make(map[string]Status, len(statuses))
	for _, status := range statuses {
		byName[status.Name] = status
	}

	return &Controller{
		display:  display,
		statuses: byName,
		buttons:  append(StatusButtons(statuses), BackButton()),
		onSelect: onSelect,
	}
}

// Buttons returns all touch targets, status buttons first.
func (c *Controller) Buttons() []Button {
	return c.buttons
}

// Reset shows the selector screen. Call it once at startup.
func (c *Controller) Reset() error {
	return c.showSelector()
}

// HandleTouch dispatches one touch point to the first button that
// contains it. It reports whether any button was hit.
func (c *Controller) HandleTouch(p image.Point) (bool, error) {
	for _, button := range c.buttons {
		if !button.Contains(p) {
			continue
		}

		if button.Name == BackName {
			return true, c.showSelector()
		}
		if status, ok := c.statuses[button.Name]; ok {
			return true, c.showStatus(status)
		}
		return true, nil
	}
	return false, nil
}

func (c *Controller) showSelector() error {
	if err := c.display.SetGroupHidden(GroupBack, true); err != nil {
		return err
	}
	if err := c.display.SetGroupHidden(GroupButtons, false); err != nil {
		return err
	}
	if err := c.display.SetGroupHidden(GroupTitle, false); err != nil {
		return err
	}
	return c.display.SetBackgroundColor(c.background)
}

func (c *Controller) showStatus(status Status) error {
	if err := c.display.SetGroupHidden(GroupBack, false); err != nil {
		return err
	}
	if err := c.display.SetGroupHidden(GroupButtons, true); err != nil {
		return err
	}
	if err := c.display.SetGroupHidden(GroupTitle, true); err != nil {
		return err
	}
	if err := c.display.SetBackgroundImage(status.Background); err != nil {
		return err
	}

	if c.onSelect != nil {
		c.onSelect(status)
	}
	return nil
}
