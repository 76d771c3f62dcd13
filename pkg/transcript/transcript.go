// Package transcript holds the ordered user/assistant turns for the resource
// currently under discussion.
package transcript

import (
	"strings"
	"sync"

	"github.com/ethanbaker/docchat/pkg/errs"
)

// Transcript is an append-only turn log that is replaced wholesale on Reset.
// At most one question may be pending at a time.
type Transcript struct {
	mu         sync.RWMutex
	turns      []Turn
	generation uint64
	pending    bool
}

// New creates an empty transcript
func New() *Transcript {
	return &Transcript{}
}

// Reset discards every turn and optionally seeds an assistant greeting. It
// also releases a pending question; that question's result is recognized as
// stale through Generation.
func (t *Transcript) Reset(greeting string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.turns = nil
	t.generation++
	t.pending = false

	if greeting = strings.TrimSpace(greeting); greeting != "" {
		t.turns = append(t.turns, NewTurn(RoleAssistant, greeting))
	}
}

// appendIn appends only while the transcript is still in generation gen
func (t *Transcript) appendIn(gen uint64, role Role, text string) (Turn, error) {
	turn := NewTurn(role, text)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.generation != gen {
		return Turn{}, errs.ErrStale
	}
	t.turns = append(t.turns, turn)

	return turn, nil
}

// Turns returns a copy of the turns in order
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Generation increases on every Reset
func (t *Transcript) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generation
}

// Pending reports whether a question is in flight
func (t *Transcript) Pending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pending
}

// Ticket marks the single in-flight question
type Ticket struct {
	t          *Transcript
	generation uint64
}

// Begin claims the in-flight slot, returning errs.ErrBusy if it is taken
func (t *Transcript) Begin() (*Ticket, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending {
		return nil, errs.ErrBusy
	}
	t.pending = true

	return &Ticket{t: t, generation: t.generation}, nil
}

// Current reports whether the transcript has not been reset since Begin
func (k *Ticket) Current() bool {
	return k.t.Generation() == k.generation
}

// AppendUser appends the question unless the transcript was reset since
// Begin, in which case errs.ErrStale is returned and nothing is written.
func (k *Ticket) AppendUser(text string) (Turn, error) {
	if strings.TrimSpace(text) == "" {
		return Turn{}, errs.Validation("question is empty")
	}
	return k.t.appendIn(k.generation, RoleUser, text)
}

// AppendAssistant appends the reply under the same rule as AppendUser
func (k *Ticket) AppendAssistant(text string) (Turn, error) {
	return k.t.appendIn(k.generation, RoleAssistant, text)
}

// Done releases the in-flight slot. A ticket from before a Reset does not
// release a slot claimed afterwards.
func (k *Ticket) Done() {
	k.t.mu.Lock()
	defer k.t.mu.Unlock()

	if k.t.generation == k.generation {
		k.t.pending = false
	}
}
