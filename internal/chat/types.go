// Package chat implements the NamiBot chat-completion proxy: it pins every
// conversation to the gardening domain with a fixed system instruction and
// forwards it to an OpenAI-compatible provider (Groq by default).
package chat

import "github.com/tanami-dev/tanami/internal/chat/wire"

type (
	Message = wire.Message
	Request = wire.Request
	Reply   = wire.Reply
)
