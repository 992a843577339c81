package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/intent"
)

// DefaultMaxMessageLength bounds a user message in characters.
const DefaultMaxMessageLength = 500

const recordTimeout = 5 * time.Second

var (
	// ErrEmptyMessage is returned for blank submissions.
	ErrEmptyMessage = errors.New("message is required")
	// ErrMessageTooLong is returned when a submission exceeds the length limit.
	ErrMessageTooLong = errors.New("message too long")
	// ErrRateLimited is returned when a user exceeds the request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrReplyDiscarded is returned when a pending reply is dropped by
	// someone other than the waiting caller.
	ErrReplyDiscarded = errors.New("reply discarded before it was shown")
)

// HitRecorder counts classification outcomes.
type HitRecorder interface {
	RecordIntentHit(ctx context.Context, intent string, outcome domain.IntentOutcome, at time.Time) error
}

// ServiceConfig tunes a Service. Zero values pick the defaults.
type ServiceConfig struct {
	Delayer          Delayer
	MaxMessageLength int
	Recorder         HitRecorder
}

// Reply is the outcome of one user submission.
type Reply struct {
	Intent   string      `json:"intent"`
	Fallback bool        `json:"fallback"`
	User     domain.Turn `json:"user"`
	Bot      domain.Turn `json:"bot"`
}

// Service runs conversations: it classifies input, appends turns and
// decides when bot replies become visible.
type Service struct {
	router   *intent.Router
	sessions *SessionManager
	delayer  Delayer
	maxLen   int
	recorder HitRecorder
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewService creates a chat service.
func NewService(router *intent.Router, sessions *SessionManager, cfg ServiceConfig) *Service {
	if cfg.Delayer == nil {
		cfg.Delayer = DefaultDelay
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = DefaultMaxMessageLength
	}
	return &Service{
		router:   router,
		sessions: sessions,
		delayer:  cfg.Delayer,
		maxLen:   cfg.MaxMessageLength,
		recorder: cfg.Recorder,
		now:      time.Now,
	}
}

// Sessions returns the underlying session manager.
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

func (s *Service) validate(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.maxLen {
		return "", ErrMessageTooLong
	}
	return text, nil
}

// submit appends the user turn and classifies it. The bot turn is returned
// but not yet visible.
func (s *Service) submit(key Key, role domain.Role, text string) (*Session, Reply, error) {
	text, err := s.validate(text)
	if err != nil {
		return nil, Reply{}, err
	}

	sess := s.sessions.GetOrCreate(key)
	user := newTurn(domain.SpeakerUser, domain.PlainPayload(text), s.now())
	if err := sess.Append(user); err != nil {
		return nil, Reply{}, err
	}

	m := s.router.Route(text, role)
	s.record(m)

	return sess, Reply{
		Intent:   m.Intent,
		Fallback: m.Fallback,
		User:     user,
		Bot:      newTurn(domain.SpeakerBot, m.Payload, s.now()),
	}, nil
}

// Send submits text and blocks until the reply is visible. Canceling ctx
// before then discards the reply; the user turn stays. If the pending reply
// is discarded elsewhere, Send returns ErrReplyDiscarded.
func (s *Service) Send(ctx context.Context, key Key, role domain.Role, text string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	sess, reply, err := s.submit(key, role, text)
	if err != nil {
		return Reply{}, err
	}

	visible := make(chan struct{})
	sched, err := sess.schedule(s.delayer.Next(), reply.Bot, func(domain.Turn) { close(visible) })
	if err != nil {
		return Reply{}, err
	}

	select {
	case <-visible:
		return reply, nil
	case <-sched.discarded:
		return Reply{}, discardedErr(sess)
	case <-sess.Done():
		return Reply{}, ErrSessionClosed
	case <-ctx.Done():
		if sched.cancel() {
			slog.Debug("Pending reply discarded", "session", key.String(), "intent", reply.Intent)
			return Reply{}, ctx.Err()
		}
	}

	// Lost the race with the timer, a flush or a foreign discard.
	select {
	case <-visible:
		return reply, nil
	case <-sched.discarded:
		return Reply{}, discardedErr(sess)
	case <-sess.Done():
		return Reply{}, ErrSessionClosed
	}
}

func discardedErr(sess *Session) error {
	select {
	case <-sess.Done():
		return ErrSessionClosed
	default:
		return ErrReplyDiscarded
	}
}

// SendAsync submits text and returns immediately. onAccepted runs once the
// user turn is recorded and before the reply is scheduled. onVisible runs
// once the reply becomes visible; it is never called if the reply is
// discarded. Either callback may be nil. The returned cancel func discards
// this reply only, if it is still pending.
func (s *Service) SendAsync(key Key, role domain.Role, text string, onAccepted func(Reply), onVisible func(domain.Turn)) (Reply, func() bool, error) {
	sess, reply, err := s.submit(key, role, text)
	if err != nil {
		return Reply{}, nil, err
	}
	if onAccepted != nil {
		onAccepted(reply)
	}
	cancel, err := sess.Schedule(s.delayer.Next(), reply.Bot, onVisible)
	if err != nil {
		return Reply{}, nil, err
	}
	return reply, cancel, nil
}

// Action resolves a quick-action token. The bot turn is appended at once
// and no user turn is recorded.
func (s *Service) Action(ctx context.Context, key Key, role domain.Role, token string) (domain.Turn, error) {
	if err := ctx.Err(); err != nil {
		return domain.Turn{}, err
	}

	m := s.router.RouteAction(token, role)
	s.record(m)

	turn := newTurn(domain.SpeakerBot, m.Payload, s.now())
	if err := s.sessions.GetOrCreate(key).Append(turn); err != nil {
		return domain.Turn{}, err
	}
	return turn, nil
}

// Transcript returns the visible turns of the session, opening it if needed.
func (s *Service) Transcript(key Key) ([]domain.Turn, error) {
	return s.sessions.GetOrCreate(key).Transcript()
}

// Discard closes the session for key.
func (s *Service) Discard(key Key) bool {
	return s.sessions.Discard(key)
}

func (s *Service) record(m intent.Match) {
	if s.recorder == nil {
		return
	}
	at := s.now()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.RecordIntentHit(ctx, m.Intent, m.Outcome(), at); err != nil {
			slog.Warn("Failed to record intent hit", "intent", m.Intent, "error", err)
		}
	}()
}

// Close waits for in-flight hit recordings.
func (s *Service) Close() {
	s.wg.Wait()
}
