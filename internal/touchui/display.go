package touchui

import (
	"log/slog"

	"libdb.so/socialglow/internal/led"
)

// LogDisplay is a Display that only logs what a real panel would show.
// It stands in when the board runs without a display attached.
type LogDisplay struct {
	Logger *slog.Logger
}

var _ Display = LogDisplay{}

func (d LogDisplay) SetBackgroundColor(c led.RGB) error {
	text, _ := c.MarshalText()
	d.Logger.Info("display: background color", "color", string(text))
	return nil
}

func (d LogDisplay) SetBackgroundImage(path string) error {
	d.Logger.Info("display: background image", "path", path)
	return nil
}

func (d LogDisplay) SetGroupHidden(group string, hidden bool) error {
	d.Logger.Debug("display: group visibility", "group", group, "hidden", hidden)
	return nil
}
