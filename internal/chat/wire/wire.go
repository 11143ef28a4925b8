// Package wire holds the chat proxy's JSON bodies. It has no dependencies so
// the CLI can speak to the proxy without linking the server.
package wire

import "encoding/json"

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the proxy's request body
type Request struct {
	Messages []Message `json:"messages"`
}

// Reply is the proxy's success response
type Reply struct {
	ID       string          `json:"id"`
	Role     string          `json:"role"`
	Content  string          `json:"content"`
	Provider string          `json:"provider"`
	Usage    json.RawMessage `json:"usage,omitempty"`
	Model    string          `json:"model"`
}
