package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAPI(t *testing.T) {
	var lastAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"conversation_id":4,"unread_count":1,"last_message_preview":"hey","other_participant":{"id":"bob","display_name":"Bob"}}]}`))
	})
	mux.HandleFunc("GET /api/v1/conversations/4/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"conversation_id":4,"messages":[{"id":9,"content":"hey","direction":"theirs","reactions":[]}]}}`))
	})
	mux.HandleFunc("GET /api/v1/conversations/5/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"data":null,"error":{"code":"FORBIDDEN","message":"접근 권한이 없습니다"}}`))
	})
	mux.HandleFunc("POST /api/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": SendResult{ConversationID: req.ConversationID, Message: Message{ID: 10, Content: req.Content, Direction: "mine"}},
		})
	})
	mux.HandleFunc("DELETE /api/v1/messages/10", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	api := NewHTTPAPI(srv.URL+"/", "tok")
	ctx := context.Background()

	convs, err := api.ListConversations(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", lastAuth)
	require.Len(t, convs, 1)
	assert.Equal(t, uint64(4), convs[0].ConversationID)
	assert.Equal(t, "Bob", convs[0].OtherParticipant.DisplayName)

	detail, err := api.OpenConversation(ctx, 4)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "theirs", detail.Messages[0].Direction)

	_, err = api.OpenConversation(ctx, 5)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	res, err := api.Send(ctx, SendRequest{ConversationID: 4, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), res.Message.ID)
	assert.Equal(t, "hi", res.Message.Content)

	assert.NoError(t, api.Unsend(ctx, 10))
}

func TestHintsURL(t *testing.T) {
	u, err := HintsURL("https://api.angple.com/", "a b")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.angple.com/ws/messages?token=a+b", u)

	u, err = HintsURL("http://localhost:8090", "t")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8090/ws/messages?token=t", u)
}

func TestListenHints(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]interface{}{"type": "conversation.updated", "payload": map[string]uint64{"conversation_id": 3}})
		// keep the socket open until the client goes away
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL, err := HintsURL(srv.URL, "t")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hints := make(chan Hint, 1)
	go func() {
		_ = ListenHints(ctx, wsURL, func(h Hint) { hints <- h }) //nolint:errcheck
	}()

	select {
	case h := <-hints:
		assert.Equal(t, uint64(3), h.ConversationID)
		assert.Equal(t, "conversation.updated", h.Type)
	case <-ctx.Done():
		t.Fatal("no hint received")
	}
}
