package export

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FileName is the fixed download filename for the final HTML.
	FileName = "meeting_notes.html"

	// EnvelopeFileName is the sibling CF_HTML envelope file. Paste helpers on
	// hosts that register the "HTML Format" clipboard type can feed it to the
	// clipboard verbatim.
	EnvelopeFileName = "meeting_notes.cfhtml"
)

// WriteHTMLFile writes the final HTML document into dir under the fixed
// download filename and returns the written path.
func WriteHTMLFile(dir, html string) (string, error) {
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write HTML export: %w", err)
	}
	return path, nil
}

// WriteEnvelopeFile writes the CF_HTML envelope for html into dir and returns
// the written path.
func WriteEnvelopeFile(dir, html string) (string, error) {
	path := filepath.Join(dir, EnvelopeFileName)
	if err := os.WriteFile(path, BuildEnvelope(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write clipboard envelope: %w", err)
	}
	return path, nil
}
