package chat

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/intent"
)

func TestSessionManager_GetOrCreateOpensWithWelcome(t *testing.T) {
	sm := NewSessionManager()
	key := Key{UserID: "user123", SessionID: "tab-1"}

	require.Nil(t, sm.Get(key))
	s := sm.GetOrCreate(key)
	require.Same(t, s, sm.GetOrCreate(key))
	require.Same(t, s, sm.Get(key))

	turns, err := s.Transcript()
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Equal(t, domain.SpeakerBot, turns[0].Speaker)
	require.Equal(t, intent.WelcomeText, turns[0].Payload.DisplayText)
	require.NotEmpty(t, turns[0].ID)
}

func TestSessionManager_Discard(t *testing.T) {
	sm := NewSessionManager()
	tab1 := Key{UserID: "user123", SessionID: "tab-1"}
	tab2 := Key{UserID: "user123", SessionID: "tab-2"}

	s1 := sm.GetOrCreate(tab1)
	sm.GetOrCreate(tab2)

	require.True(t, sm.Discard(tab1))
	require.False(t, sm.Discard(tab1))
	require.Nil(t, sm.Get(tab1))
	require.NotNil(t, sm.Get(tab2))

	_, err := s1.Transcript()
	require.ErrorIs(t, err, ErrSessionClosed)

	// A discarded session reopens fresh.
	turns, err := sm.GetOrCreate(tab1).Transcript()
	require.NoError(t, err)
	require.Len(t, turns, 1)
}

func TestSessionManager_CountAcrossUsers(t *testing.T) {
	sm := NewSessionManager()
	sm.GetOrCreate(Key{UserID: "a", SessionID: "1"})
	sm.GetOrCreate(Key{UserID: "a", SessionID: "2"})
	sm.GetOrCreate(Key{UserID: "b", SessionID: "1"})
	require.Equal(t, 3, sm.Count())

	require.True(t, sm.Discard(Key{UserID: "a", SessionID: "1"}))
	require.Equal(t, 2, sm.Count())
}

func TestSessionManager_SweepIdle(t *testing.T) {
	sm := NewSessionManager()
	start := time.Now()
	sm.now = func() time.Time { return start }

	idle := sm.GetOrCreate(Key{UserID: "a", SessionID: "idle"})
	busy := sm.GetOrCreate(Key{UserID: "a", SessionID: "busy"})
	_, err := busy.Schedule(time.Hour, newTurn(domain.SpeakerBot, domain.PlainPayload("pending"), start), nil)
	require.NoError(t, err)

	sm.now = func() time.Time { return start.Add(time.Hour) }
	require.Equal(t, 1, sm.SweepIdle(30*time.Minute))

	_, err = idle.Transcript()
	require.ErrorIs(t, err, ErrSessionClosed)
	require.NotNil(t, sm.Get(Key{UserID: "a", SessionID: "busy"}))
}

func TestSessionManager_ConcurrentAccess(t *testing.T) {
	sm := NewSessionManager()
	var wg sync.WaitGroup

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := Key{UserID: "concurrentUser", SessionID: "tab-" + strconv.Itoa(i%20)}
				sm.GetOrCreate(key)
				sm.Get(key)
				if i%7 == 0 {
					sm.Discard(key)
				}
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, sm.Count(), 20)
}
