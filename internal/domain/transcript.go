package domain

import "time"

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Turn is a single transcript entry.
type Turn struct {
	ID        string          `json:"id"`
	Speaker   Speaker         `json:"speaker"`
	Payload   ResponsePayload `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// IntentOutcome records whether a classification hit a rule or fell back.
type IntentOutcome string

const (
	OutcomeResolved IntentOutcome = "resolved"
	OutcomeFallback IntentOutcome = "fallback"
)

// IntentStat is the aggregated hit count for one intent.
type IntentStat struct {
	Intent     string        `json:"intent"`
	Outcome    IntentOutcome `json:"outcome"`
	Hits       int64         `json:"hits"`
	LastSeenAt time.Time     `json:"last_seen_at"`
}
