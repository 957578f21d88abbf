package export

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when the host has no usable clipboard.
// Callers must offer the file export fallback instead of failing the session.
var ErrClipboardUnavailable = errors.New("system clipboard unavailable")

// Copier writes text to a clipboard. The interface exists so the session
// surface can be tested without touching the host clipboard.
type Copier interface {
	Copy(text string) error
}

// SystemClipboard is the host clipboard.
type SystemClipboard struct{}

// Copy writes text to the system clipboard.
func (SystemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// CopyHTML places the raw HTML string on the clipboard as the plain-text
// fallback payload. Rich-paste hosts that register the CF_HTML format consume
// BuildEnvelope's bytes instead; plain hosts paste the markup as-is, which is
// still recoverable content.
func CopyHTML(c Copier, html string) error {
	return c.Copy(html)
}
