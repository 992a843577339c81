package chat

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/ashureev/campus-assist/internal/domain"
)

// ErrSessionClosed is returned by operations on a discarded session.
var ErrSessionClosed = errors.New("chat session closed")

// pendingReply is a bot turn waiting behind the typing indicator.
type pendingReply struct {
	turn      domain.Turn
	timer     *time.Timer
	onVisible func(domain.Turn)
	discarded chan struct{} // closed when the reply is dropped without showing
}

func newPendingReply(turn domain.Turn, onVisible func(domain.Turn)) *pendingReply {
	return &pendingReply{turn: turn, onVisible: onVisible, discarded: make(chan struct{})}
}

// discardLocked stops the timer and wakes anyone waiting on the reply.
func (p *pendingReply) discardLocked() {
	p.timer.Stop()
	close(p.discarded)
}

func (p *pendingReply) notify() {
	if p != nil && p.onVisible != nil {
		p.onVisible(p.turn)
	}
}

// Session owns one linear transcript. At most one reply is pending at a
// time; scheduling or appending while a reply is pending makes that reply
// visible first so the transcript keeps submission order.
type Session struct {
	key Key

	mu         sync.Mutex
	turns      []domain.Turn
	pending    *pendingReply
	lastActive time.Time
	closed     bool
	done       chan struct{}
}

func newSession(key Key, welcome domain.Turn) *Session {
	return &Session{
		key:        key,
		turns:      []domain.Turn{welcome},
		lastActive: welcome.Timestamp,
		done:       make(chan struct{}),
	}
}

// Key returns the session's identity.
func (s *Session) Key() Key {
	return s.key
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Append adds a visible turn.
func (s *Session) Append(turn domain.Turn) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	flushed := s.flushLocked()
	s.turns = append(s.turns, turn)
	s.touchLocked(turn.Timestamp)
	s.mu.Unlock()

	flushed.notify()
	return nil
}

// Schedule makes turn visible after delay and then calls onVisible. The
// returned cancel func discards the reply if it is still pending and reports
// whether it did; it never touches a reply scheduled by another call.
func (s *Session) Schedule(delay time.Duration, turn domain.Turn, onVisible func(domain.Turn)) (cancel func() bool, err error) {
	r, err := s.schedule(delay, turn, onVisible)
	if err != nil {
		return nil, err
	}
	return r.cancel, nil
}

// scheduledReply is the caller's handle on one scheduled reply.
type scheduledReply struct {
	cancel func() bool
	// discarded is closed if the reply is dropped before it becomes visible.
	discarded <-chan struct{}
}

func (s *Session) schedule(delay time.Duration, turn domain.Turn, onVisible func(domain.Turn)) (scheduledReply, error) {
	p := newPendingReply(turn, onVisible)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return scheduledReply{}, ErrSessionClosed
	}
	flushed := s.flushLocked()

	if delay <= 0 {
		s.turns = append(s.turns, turn)
		s.touchLocked(turn.Timestamp)
		s.mu.Unlock()

		flushed.notify()
		p.notify()
		return scheduledReply{cancel: func() bool { return false }, discarded: p.discarded}, nil
	}

	s.pending = p
	p.timer = time.AfterFunc(delay, func() { s.fire(p) })
	s.mu.Unlock()

	flushed.notify()
	return scheduledReply{cancel: func() bool { return s.cancel(p) }, discarded: p.discarded}, nil
}

func (s *Session) fire(p *pendingReply) {
	s.mu.Lock()
	if s.closed || s.pending != p {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.turns = append(s.turns, p.turn)
	s.touchLocked(time.Now())
	s.mu.Unlock()

	p.notify()
}

func (s *Session) cancel(p *pendingReply) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != p {
		return false
	}
	p.discardLocked()
	s.pending = nil
	return true
}

// flushLocked makes the pending reply visible now. The caller must notify
// the returned reply after releasing the lock.
func (s *Session) flushLocked() *pendingReply {
	p := s.pending
	if p == nil {
		return nil
	}
	p.timer.Stop()
	s.pending = nil
	s.turns = append(s.turns, p.turn)
	return p
}

func (s *Session) touchLocked(t time.Time) {
	if t.After(s.lastActive) {
		s.lastActive = t
	}
}

// CancelPending discards the pending reply, if any, whoever scheduled it.
// Its waiter is woken through the discarded channel.
func (s *Session) CancelPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return false
	}
	s.pending.discardLocked()
	s.pending = nil
	return true
}

// HasPending reports whether a reply is waiting behind the typing indicator.
func (s *Session) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Transcript returns a copy of the visible turns.
func (s *Session) Transcript() ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return slices.Clone(s.turns), nil
}

// LastActive returns the time of the latest visible turn.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops the pending timer and clears the transcript. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// done closes first so a woken waiter can tell a close from a discard.
	s.closed = true
	close(s.done)
	if s.pending != nil {
		s.pending.discardLocked()
		s.pending = nil
	}
	s.turns = nil
}
