package tui

import (
	"errors"

	"github.com/atotto/clipboard"
)

var writeClipboard = clipboard.WriteAll

// systemClipboard copies text with the platform clipboard tool, falling back
// to an OSC 52 request through the terminal when no tool is available.
func (u *ui) systemClipboard(text string) error {
	err := writeClipboard(text)
	if err == nil {
		return nil
	}
	u.log.Debug("clipboard tool unavailable", "err", err)
	if c, ok := u.screen.(interface{ SetClipboard([]byte) }); ok {
		c.SetClipboard([]byte(text))
		return nil
	}
	return errors.Join(err, errors.New("terminal clipboard unsupported"))
}
