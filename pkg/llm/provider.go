// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/entrhq/scribe/pkg/llm/openai"
//	    "github.com/entrhq/scribe/pkg/types"
//	)
//
//	func main() {
//	    provider, err := openai.NewProvider(
//	        os.Getenv("OPENAI_API_KEY"),
//	        openai.WithModel("gpt-4o"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    messages := []*types.Message{
//	        types.NewSystemMessage("You are a helpful assistant."),
//	        types.NewUserMessage("Hello!"),
//	    }
//
//	    reply, err := provider.Complete(context.Background(), messages)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(reply.Content)
//	}
package llm

import (
	"context"
	"errors"

	"github.com/entrhq/scribe/pkg/types"
)

// ErrEmptyCompletion is returned when the provider responds successfully but
// with no usable text. Callers must treat it as a failure: an empty structured
// document would silently discard the user's notes.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// Provider defines the interface for LLM integrations.
//
// Providers handle API communication with LLM services and nothing else.
// Prompt construction, conversation state, and error presentation belong to
// the session layer. This separation keeps providers reusable outside the
// interactive app (batch structuring, tests) and simpler to implement.
//
// Calls are synchronous and blocking; the caller owns any timeout via ctx.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response.
	//
	// Returns ErrEmptyCompletion (possibly wrapped) if the provider answers
	// with empty content, or a transport/provider error otherwise. On error
	// the returned message is nil.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
