package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tanami-dev/tanami/internal/chat/wire"
)

// Chat sends the conversation to the chat proxy at chatURL. The proxy is
// hosted separately from the backend and takes no bearer token.
func (c *Client) Chat(ctx context.Context, chatURL string, messages []wire.Message) (*wire.Reply, error) {
	if len(messages) == 0 {
		return nil, &ValidationError{Fields: []FieldError{{Field: "messages", Rule: "min"}}}
	}

	jsonData, err := json.Marshal(wire.Request{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var reply wire.Reply
	if err := c.execute(req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
