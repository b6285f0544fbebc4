// Package role defines the sender roles used in assistant conversations.
package role

// Role represents the sender of a message in a conversation.
type Role string

const (
	System Role = "system"
	Human  Role = "human"
	AI     Role = "ai"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case System, Human, AI:
		return true
	}
	return false
}

// String returns the underlying string value of the role.
func (r Role) String() string {
	return string(r)
}

// Wire returns the chat-completion API name for the role ("system", "user",
// or "assistant"). Unknown roles map to their raw string value.
func (r Role) Wire() string {
	switch r {
	case Human:
		return "user"
	case AI:
		return "assistant"
	default:
		return string(r)
	}
}
