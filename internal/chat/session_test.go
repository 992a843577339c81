package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assist/internal/domain"
)

func testSession() *Session {
	return newSession(Key{UserID: "u", SessionID: "s"}, newTurn(domain.SpeakerBot, domain.PlainPayload("welcome"), time.Now()))
}

func texts(turns []domain.Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Payload.DisplayText
	}
	return out
}

func TestSession_ScheduleBecomesVisible(t *testing.T) {
	s := testSession()
	visible := make(chan domain.Turn, 1)

	bot := newTurn(domain.SpeakerBot, domain.PlainPayload("reply"), time.Now())
	_, err := s.Schedule(10*time.Millisecond, bot, func(turn domain.Turn) { visible <- turn })
	require.NoError(t, err)
	require.True(t, s.HasPending())

	turns, err := s.Transcript()
	require.NoError(t, err)
	require.Equal(t, []string{"welcome"}, texts(turns))

	select {
	case got := <-visible:
		require.Equal(t, bot.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("reply never became visible")
	}

	turns, err = s.Transcript()
	require.NoError(t, err)
	require.Equal(t, []string{"welcome", "reply"}, texts(turns))
	require.False(t, s.HasPending())
}

func TestSession_AppendFlushesPendingReply(t *testing.T) {
	s := testSession()
	flushed := false

	_, err := s.Schedule(time.Hour, newTurn(domain.SpeakerBot, domain.PlainPayload("first reply"), time.Now()), func(domain.Turn) { flushed = true })
	require.NoError(t, err)
	require.NoError(t, s.Append(newTurn(domain.SpeakerUser, domain.PlainPayload("second question"), time.Now())))

	require.True(t, flushed)
	turns, _ := s.Transcript()
	require.Equal(t, []string{"welcome", "first reply", "second question"}, texts(turns))
}

func TestSession_CancelDiscardsOnlyItsReply(t *testing.T) {
	s := testSession()

	cancelFirst, err := s.Schedule(time.Hour, newTurn(domain.SpeakerBot, domain.PlainPayload("a"), time.Now()), nil)
	require.NoError(t, err)
	cancelSecond, err := s.Schedule(time.Hour, newTurn(domain.SpeakerBot, domain.PlainPayload("b"), time.Now()), nil)
	require.NoError(t, err)

	// "a" was flushed by the second schedule, so it can no longer be canceled.
	require.False(t, cancelFirst())
	require.True(t, cancelSecond())
	require.False(t, cancelSecond())

	turns, _ := s.Transcript()
	require.Equal(t, []string{"welcome", "a"}, texts(turns))
}

func TestSession_ZeroDelayIsSynchronous(t *testing.T) {
	s := testSession()
	called := false

	_, err := s.Schedule(0, newTurn(domain.SpeakerBot, domain.PlainPayload("now"), time.Now()), func(domain.Turn) { called = true })
	require.NoError(t, err)
	require.True(t, called)
	require.False(t, s.HasPending())
}

func TestSession_Close(t *testing.T) {
	s := testSession()
	fired := make(chan struct{})
	_, err := s.Schedule(5*time.Millisecond, newTurn(domain.SpeakerBot, domain.PlainPayload("late"), time.Now()), func(domain.Turn) { close(fired) })
	require.NoError(t, err)

	s.Close()
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
	select {
	case <-fired:
		t.Fatal("reply delivered after close")
	case <-time.After(30 * time.Millisecond):
	}

	_, err = s.Transcript()
	require.ErrorIs(t, err, ErrSessionClosed)
	require.ErrorIs(t, s.Append(domain.Turn{}), ErrSessionClosed)
	_, err = s.Schedule(0, domain.Turn{}, nil)
	require.ErrorIs(t, err, ErrSessionClosed)
	require.False(t, s.CancelPending())
}

func TestSession_TranscriptIsCopy(t *testing.T) {
	s := testSession()
	turns, _ := s.Transcript()
	turns[0].Payload.DisplayText = "changed"

	again, _ := s.Transcript()
	require.Equal(t, "welcome", again[0].Payload.DisplayText)
}

func TestDelayers(t *testing.T) {
	require.Zero(t, NoDelay.Next())
	require.Equal(t, 2*time.Second, FixedDelay(2*time.Second).Next())
	require.Zero(t, FixedDelay(-time.Second).Next())
	require.Equal(t, time.Second, RandomDelay{Base: time.Second}.Next())

	for i := 0; i < 100; i++ {
		d := DefaultDelay.Next()
		require.GreaterOrEqual(t, d, time.Second)
		require.Less(t, d, 2*time.Second)
	}
}

func TestSession_DiscardWakesWaiter(t *testing.T) {
	s := testSession()
	bot := func(text string) domain.Turn { return newTurn(domain.SpeakerBot, domain.PlainPayload(text), time.Now()) }

	dropped, err := s.schedule(time.Hour, bot("dropped"), nil)
	require.NoError(t, err)
	require.True(t, s.CancelPending())
	select {
	case <-dropped.discarded:
	default:
		t.Fatal("discarded not signaled after CancelPending")
	}

	flushed, err := s.schedule(time.Hour, bot("flushed"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Append(newTurn(domain.SpeakerUser, domain.PlainPayload("next"), time.Now())))
	select {
	case <-flushed.discarded:
		t.Fatal("a flushed reply is visible, not discarded")
	default:
	}

	closed, err := s.schedule(time.Hour, bot("closed"), nil)
	require.NoError(t, err)
	s.Close()
	select {
	case <-closed.discarded:
	default:
		t.Fatal("discarded not signaled after Close")
	}
}
