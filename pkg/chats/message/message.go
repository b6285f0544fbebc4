// Package message defines the Message type used in assistant conversations.
package message

import "github.com/okonma/valet/pkg/chats/role"

// Message represents a single message in a conversation.
// It is a value type that copies cheaply.
type Message struct {
	Role    role.Role
	Content string
}

// New creates a message with the given role and text content.
func New(r role.Role, content string) Message {
	return Message{Role: r, Content: content}
}

// System creates a system message.
func System(content string) Message {
	return New(role.System, content)
}

// Human creates a human (user) message.
func Human(content string) Message {
	return New(role.Human, content)
}

// AI creates an assistant message.
func AI(content string) Message {
	return New(role.AI, content)
}
