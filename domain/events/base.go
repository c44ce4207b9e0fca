package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBaseEvent(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Resonance Events

// ResonanceMarked is raised when a user judges whether a surfaced
// reflection resonated with them
type ResonanceMarked struct {
	BaseEvent
	StateLogID string `json:"state_log_id"`
	UserID     string `json:"user_id"`
	Resonated  bool   `json:"resonated"`
}

// NewResonanceMarked creates a ResonanceMarked event
func NewResonanceMarked(stateLogID, userID string, resonated bool, timestamp time.Time) ResonanceMarked {
	return ResonanceMarked{
		BaseEvent:  newBaseEvent(stateLogID, "statelog.resonance_marked", timestamp),
		StateLogID: stateLogID,
		UserID:     userID,
		Resonated:  resonated,
	}
}

// Pattern Events

// PatternMirrorDismissed is raised when a user dismisses the pattern
// mirror for the current day
type PatternMirrorDismissed struct {
	BaseEvent
	UserID string `json:"user_id"`
	Date   string `json:"date"` // UTC calendar date, yyyy-mm-dd
}

// NewPatternMirrorDismissed creates a PatternMirrorDismissed event
func NewPatternMirrorDismissed(userID, date string, timestamp time.Time) PatternMirrorDismissed {
	return PatternMirrorDismissed{
		BaseEvent: newBaseEvent(userID, "patterns.mirror_dismissed", timestamp),
		UserID:    userID,
		Date:      date,
	}
}

// Synthesis Events

// SynthesisCompleted is raised when a synthesis run finishes, whether
// the model answered or the fallback was served
type SynthesisCompleted struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Fallback bool   `json:"fallback"`
}

// NewSynthesisCompleted creates a SynthesisCompleted event
func NewSynthesisCompleted(userID string, fallback bool, timestamp time.Time) SynthesisCompleted {
	return SynthesisCompleted{
		BaseEvent: newBaseEvent(userID, "synthesis.completed", timestamp),
		UserID:    userID,
		Fallback:  fallback,
	}
}
