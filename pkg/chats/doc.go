// Package chats provides a provider-agnostic data model for chat
// conversations.
//
// It is organized into sub-packages:
//   - [github.com/okonma/valet/pkg/chats/role] holds conversation roles
//     (system, human, ai) and their wire-format names
//   - [github.com/okonma/valet/pkg/chats/message] holds messages composed
//     of a role and text content
//   - [github.com/okonma/valet/pkg/chats/chat] holds the mutable
//     conversation container
//
// No provider or API code is included. chats is a foundation layer that
// the engine and transport packages build on.
package chats
