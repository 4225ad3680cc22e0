package notify

import (
	"context"
	"errors"
	"sync"
)

// Kind names a notification. Game-wide kinds go to everyone in the game,
// player kinds only to the listed recipient.
type Kind string

const (
	KindStatus        Kind = "status"
	KindTurn          Kind = "turn"
	KindMove          Kind = "move"
	KindScore         Kind = "score"
	KindPlayerJoined  Kind = "player_joined"
	KindTeamsCreated  Kind = "teams_created"
	KindHand          Kind = "hand"
	KindBeliefs       Kind = "beliefs"
	KindPlayerView    Kind = "view"
	KindCommandFailed Kind = "error"
)

// Notification is one outbound event. An empty Recipients list means every
// player of the game.
type Notification struct {
	GameID     string
	Seq        uint64
	Kind       Kind
	Recipients []string
	Payload    any
}

// Private reports whether the notification targets specific players.
func (n Notification) Private() bool { return len(n.Recipients) > 0 }

// Broadcaster delivers notifications. Implementations must not block the
// caller for long; the game actor calls Publish inline.
type Broadcaster interface {
	Publish(ctx context.Context, n Notification) error
}

// Multi fans a notification out to every sink and joins their errors.
type Multi []Broadcaster

func (m Multi) Publish(ctx context.Context, n Notification) error {
	var errs []error
	for _, b := range m {
		if b == nil {
			continue
		}
		if err := b.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps everything it is given. Handy in tests and for debugging
// a single game.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) Publish(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.Recipients = append([]string(nil), n.Recipients...)
	r.sent = append(r.sent, n)
	return nil
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

// Kinds filters by kind, in publish order.
func (r *Recorder) Kinds(k Kind) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.sent {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// For returns what a given player would have received.
func (r *Recorder) For(playerID string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.sent {
		if !n.Private() {
			out = append(out, n)
			continue
		}
		for _, id := range n.Recipients {
			if id == playerID {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}
