package domain

import (
	"testing"
	"time"
)

func TestPairKey_OrderIndependent(t *testing.T) {
	if PairKey("alice", "bob") != PairKey("bob", "alice") {
		t.Fatal("Expected pair key to ignore argument order")
	}
	if PairKey("alice", "bob") == PairKey("alice", "carol") {
		t.Error("Expected different pairs to produce different keys")
	}
}

func TestConversation_IsPair(t *testing.T) {
	conv := &Conversation{Participants: []ConversationParticipant{{UserID: "a"}, {UserID: "b"}}}
	if !conv.IsPair("b", "a") {
		t.Error("Expected {a,b} to match")
	}
	if conv.IsPair("a", "c") {
		t.Error("Expected {a,c} not to match")
	}

	conv.Participants = append(conv.Participants, ConversationParticipant{UserID: "c"})
	if conv.IsPair("a", "b") {
		t.Error("Expected a superset of participants not to match")
	}
}

func TestMessage_ToResponse_Deleted(t *testing.T) {
	m := &Message{
		ID:            7,
		SenderID:      "alice",
		Content:       "hello",
		AttachmentURL: "https://cdn/x.png",
		IsDeleted:     true,
		Reactions:     []MessageReaction{{ID: 1, UserID: "bob", Emoji: "❤️"}},
	}

	resp := m.ToResponse("bob", nil)
	if resp.Content != UnsentPlaceholder {
		t.Errorf("Expected placeholder, got '%s'", resp.Content)
	}
	if resp.AttachmentURL != "" {
		t.Error("Expected attachment to be hidden")
	}
	if len(resp.Reactions) != 0 {
		t.Errorf("Expected no reactions, got %d", len(resp.Reactions))
	}
	if resp.Direction != DirectionTheirs {
		t.Errorf("Expected direction theirs, got '%s'", resp.Direction)
	}
}

func TestMessage_ToResponse_ReplyPreview(t *testing.T) {
	parent := &Message{ID: 1, SenderID: "bob", Content: "secret", IsDeleted: true}
	replyID := parent.ID
	m := &Message{ID: 2, SenderID: "alice", Content: "re", ReplyToID: &replyID}

	resp := m.ToResponse("alice", parent)
	if resp.Direction != DirectionMine {
		t.Errorf("Expected direction mine, got '%s'", resp.Direction)
	}
	if resp.ReplyTo == nil {
		t.Fatal("Expected reply preview")
	}
	if resp.ReplyTo.Content != UnsentPlaceholder || !resp.ReplyTo.IsDeleted {
		t.Errorf("Expected deleted reply preview, got %+v", resp.ReplyTo)
	}
}

func TestMessage_Preview(t *testing.T) {
	if got := (&Message{AttachmentURL: "u"}).Preview(); got != AttachmentMarker {
		t.Errorf("Expected attachment marker, got '%s'", got)
	}
	if got := (&Message{Content: "hi"}).Preview(); got != "hi" {
		t.Errorf("Expected 'hi', got '%s'", got)
	}
}

func TestSummarizeReactions(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reactions := []MessageReaction{
		{ID: 3, UserID: "carol", Emoji: "👍", CreatedAt: base.Add(2 * time.Second)},
		{ID: 1, UserID: "alice", Emoji: "❤️", CreatedAt: base},
		{ID: 2, UserID: "bob", Emoji: "❤️", CreatedAt: base.Add(time.Second)},
	}

	got := SummarizeReactions(reactions, "bob")
	if len(got) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(got))
	}
	if got[0].Emoji != "❤️" || got[0].Count != 2 || !got[0].Mine {
		t.Errorf("Unexpected first summary: %+v", got[0])
	}
	if got[0].UserIDs[0] != "alice" || got[0].UserIDs[1] != "bob" {
		t.Errorf("Expected user ids in reaction order, got %v", got[0].UserIDs)
	}
	if got[1].Emoji != "👍" || got[1].Mine {
		t.Errorf("Unexpected second summary: %+v", got[1])
	}
}

func TestSummarizeReactions_ReplacedEmojiKeepsPlace(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// alice reacted first; both members later switched emoji, bob before alice
	reactions := []MessageReaction{
		{ID: 2, UserID: "bob", Emoji: "😂", CreatedAt: base.Add(time.Second), UpdatedAt: base.Add(time.Minute)},
		{ID: 1, UserID: "alice", Emoji: "🔥", CreatedAt: base, UpdatedAt: base.Add(2 * time.Minute)},
	}

	got := SummarizeReactions(reactions, "alice")
	if len(got) != 2 {
		t.Fatalf("Expected 2 summaries, got %d", len(got))
	}
	if got[0].Emoji != "🔥" || got[1].Emoji != "😂" {
		t.Errorf("Expected order 🔥, 😂, got %s, %s", got[0].Emoji, got[1].Emoji)
	}
}
