package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/surveyforge/survey-service/internal/models"
)

type EventType string

const (
	AttemptCreated   EventType = "attempt.created"
	AttemptCancelled EventType = "attempt.cancelled"
	AttemptConfirmed EventType = "attempt.confirmed"
	AttemptExpired   EventType = "attempt.expired"
	AnswerSubmitted  EventType = "attempt.answer_submitted"
)

const (
	eventSource  = "survey-service"
	eventVersion = "1.0"
)

// AttemptEvent is the lifecycle event emitted after an attempt workflow
// commits. Consumers (notifications, analytics) live outside this service.
type AttemptEvent struct {
	ID              string    `json:"id"`
	Type            EventType `json:"type"`
	AttemptID       uint      `json:"attempt_id"`
	SurveyID        uint      `json:"survey_id"`
	ParticipantKind string    `json:"participant_kind"`
	ParticipantID   string    `json:"participant_id"`
	QuestionID      *uint     `json:"question_id,omitempty"`
	Score           *float64  `json:"score,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Source          string    `json:"source"`
	Version         string    `json:"version"`
}

// NewAttemptEvent builds an event snapshot from an attempt.
func NewAttemptEvent(eventType EventType, attempt *models.Attempt) *AttemptEvent {
	return &AttemptEvent{
		ID:              uuid.New().String(),
		Type:            eventType,
		AttemptID:       attempt.ID,
		SurveyID:        attempt.SurveyID,
		ParticipantKind: attempt.ParticipantKind,
		ParticipantID:   attempt.ParticipantID,
		QuestionID:      attempt.CurrentQuestionID,
		Score:           attempt.Score,
		Timestamp:       time.Now().UTC(),
		Source:          eventSource,
		Version:         eventVersion,
	}
}
