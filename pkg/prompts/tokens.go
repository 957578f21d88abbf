package prompts

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE encoding used for estimates. cl100k_base is close
// enough across the OpenAI-compatible models we target; the number is shown
// to the user as a rough cost hint before generation, nothing more.
const encodingName = "cl100k_base"

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens returns an approximate token count for text. It uses the
// tiktoken cl100k_base encoding when available and falls back to a
// words-times-4/3 heuristic if the encoding cannot be loaded (e.g. no
// network access to fetch the BPE data on first use).
func EstimateTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err == nil {
			encoding = enc
		}
	})

	if encoding != nil {
		return len(encoding.Encode(text, nil, nil))
	}

	return len(strings.Fields(text)) * 4 / 3
}
