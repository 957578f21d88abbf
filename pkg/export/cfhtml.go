// Package export delivers finalized meeting notes to the outside world: the
// system clipboard, CF_HTML paste envelopes for rich-paste hosts, and plain
// HTML file export.
package export

import (
	"fmt"
)

// CF_HTML envelope layout. The header carries byte offsets into the envelope
// itself, so its own length must be constant: every offset is a fixed-width
// zero-padded decimal. The header length is computed once with placeholder
// zero offsets, which breaks the circular dependency between the offsets and
// the header length they depend on.
const (
	headerTemplate = "Version:0.9\r\nStartHTML:%08d\r\nEndHTML:%08d\r\nStartFragment:%08d\r\nEndFragment:%08d\r\n"

	// The fragment markers delimit the pasteable region within the full
	// document span, matching what Outlook expects on paste.
	fragmentPrefix = "<html><body>\r\n<!--StartFragment-->"
	fragmentSuffix = "<!--EndFragment-->\r\n</body></html>"
)

// BuildEnvelope wraps an HTML fragment in the CF_HTML clipboard envelope.
//
// All offsets are computed over UTF-8 byte lengths, not character counts:
// the fragment routinely contains multi-byte characters (the 📋 banner,
// bullets, accented names) and character-based offsets would desynchronize
// the envelope and corrupt the pasted result.
func BuildEnvelope(htmlFragment string) []byte {
	// len() on a Go string is already its UTF-8 byte length.
	dummyHeader := fmt.Sprintf(headerTemplate, 0, 0, 0, 0)
	startHTML := len(dummyHeader)
	startFragment := startHTML + len(fragmentPrefix)
	endFragment := startFragment + len(htmlFragment)
	endHTML := endFragment + len(fragmentSuffix)

	header := fmt.Sprintf(headerTemplate, startHTML, endHTML, startFragment, endFragment)
	return []byte(header + fragmentPrefix + htmlFragment + fragmentSuffix)
}
