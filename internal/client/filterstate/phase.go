package filterstate

// Phase is the synchronizer's position in one request cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSyncingURL
	PhaseAwaitingResponse
	PhaseApplying
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSyncingURL:
		return "syncing-url"
	case PhaseAwaitingResponse:
		return "awaiting-response"
	case PhaseApplying:
		return "applying"
	default:
		return "unknown"
	}
}

// Ticket tags a dispatched request. Tickets increase monotonically.
type Ticket uint64

// Sequencer issues tickets and remembers the latest one.
// It is owned by the event loop and needs no locking.
type Sequencer struct {
	latest Ticket
}

// Next issues a new ticket.
func (s *Sequencer) Next() Ticket {
	s.latest++
	return s.latest
}

// IsLatest reports whether t is the most recently issued ticket.
func (s *Sequencer) IsLatest(t Ticket) bool {
	return t == s.latest
}

// Latest returns the most recent ticket, 0 before any dispatch.
func (s *Sequencer) Latest() Ticket {
	return s.latest
}
