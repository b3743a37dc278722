package syncclient

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind tags the variant of a timeline entry
type EntryKind int

const (
	// Optimistic is a local send still waiting for the server
	Optimistic EntryKind = iota
	// Confirmed carries a server id
	Confirmed
	// Failed is a send the server rejected or never answered; it stays until dismissed
	Failed
)

func (k EntryKind) String() string {
	switch k {
	case Optimistic:
		return "optimistic"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry is one row of the visible timeline.
// Optimistic and Failed entries carry TempID; Confirmed entries carry ServerID.
type Entry struct {
	CreatedAt time.Time
	Err       error
	TempID    string
	Message   Message
	ServerID  uint64
	Kind      EntryKind
}

func newTempID() string {
	return "tmp-" + uuid.NewString()
}

func confirmedEntry(m Message) Entry {
	return Entry{Kind: Confirmed, ServerID: m.ID, Message: m, CreatedAt: m.CreatedAt}
}
