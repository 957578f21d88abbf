// Package types defines the shared data types used across Scribe packages.
package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem identifies system-level instructions.
	RoleUser      MessageRole = "user"      // RoleUser identifies input from the user.
	RoleAssistant MessageRole = "assistant" // RoleAssistant identifies model-generated output.
)

// Message represents a single turn in a conversation with an LLM provider.
type Message struct {
	// Role indicates who authored the message.
	Role MessageRole

	// Content is the text content of the message.
	Content string
}

// NewSystemMessage creates a message carrying system-level instructions.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a message authored by the assistant.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}
