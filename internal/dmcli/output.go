package dmcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/damoang/angple-messenger/pkg/syncclient"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printInbox(w io.Writer, items []syncclient.Conversation) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	for _, c := range items {
		marker := " "
		if c.UnreadCount > 0 {
			marker = "*"
		}
		when := ""
		if c.LastMessageTime != nil {
			when = c.LastMessageTime.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s #%-6d %-20s %-19s %s\n", marker, c.ConversationID,
			c.OtherParticipant.DisplayName, when, oneLine(c.LastMessagePreview))
	}
}

func printEntry(w io.Writer, e syncclient.Entry) {
	m := e.Message
	id := fmt.Sprintf("%d", e.ServerID)
	switch e.Kind {
	case syncclient.Optimistic:
		id = "sending"
	case syncclient.Failed:
		id = "FAILED " + e.TempID
	}

	who := m.SenderID
	if m.Direction == "mine" {
		who = "me"
	}

	body := oneLine(m.Content)
	if m.AttachmentURL != "" {
		body = strings.TrimSpace(body + " [" + m.AttachmentType + "] " + m.AttachmentURL)
	}
	if m.ReplyTo != nil {
		body = fmt.Sprintf("(re #%d: %s) %s", m.ReplyTo.ID, oneLine(m.ReplyTo.Content), body)
	}

	var reactions []string
	for _, r := range m.Reactions {
		reactions = append(reactions, fmt.Sprintf("%s %d", r.Emoji, r.Count))
	}
	if len(reactions) > 0 {
		body += "  [" + strings.Join(reactions, ", ") + "]"
	}

	fmt.Fprintf(w, "%-10s %-12s %s\n", id, who, body)
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 80 {
		return string(r[:79]) + "…"
	}
	return s
}
