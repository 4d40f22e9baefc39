package game

// Event is a completion or progression signal exchanged with the presentation layer.
type Event interface {
	EventName() string
}

// RingSolved is emitted when the built word solves the active ring.
type RingSolved struct {
	NextLayer int       `json:"nextLayer"`
	Kind      SolveKind `json:"kind"`
	Word      string    `json:"word"`
}

func (RingSolved) EventName() string { return "ring_solved" }

// LevelSolved is posted by the presentation layer once the completion
// reveal has played, asking for the next level.
type LevelSolved struct{}

func (LevelSolved) EventName() string { return "level_solved" }

// Mailbox is a FIFO of events drained once per tick.
// It is owned by the single goroutine running the game.
type Mailbox struct {
	queue []Event
}

// Push appends e.
func (m *Mailbox) Push(e Event) {
	m.queue = append(m.queue, e)
}

// Drain returns pending events in emission order and empties the mailbox.
func (m *Mailbox) Drain() []Event {
	out := m.queue
	m.queue = nil
	return out
}

// Len returns the number of pending events.
func (m *Mailbox) Len() int { return len(m.queue) }
