package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Hint is a server push telling the client which conversation changed.
// Hints never carry message content; a missed hint only delays the next poll.
type Hint struct {
	Type           string
	ConversationID uint64
}

type hintEvent struct {
	Type    string `json:"type"`
	Payload struct {
		ConversationID uint64 `json:"conversation_id"`
	} `json:"payload"`
}

// HintsURL converts the API base URL into the websocket hints endpoint
func HintsURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/ws/messages")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ListenHints reads hints until ctx is cancelled or the connection drops
func ListenHints(ctx context.Context, wsURL string, onHint func(Hint)) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial hints: %s: %w", resp.Status, err)
		}
		return fmt.Errorf("dial hints: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev hintEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				continue
			}
			return err
		}
		if ev.Payload.ConversationID == 0 {
			continue
		}
		onHint(Hint{Type: ev.Type, ConversationID: ev.Payload.ConversationID})
	}
}
