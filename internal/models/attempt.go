package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCancelled  AttemptStatus = "cancelled"
	AttemptConfirmed  AttemptStatus = "confirmed"
	AttemptExpired    AttemptStatus = "expired"
)

// Participant is a polymorphic reference to whoever is taking the survey:
// a kind discriminator plus an opaque id within that kind. Lookup of the
// underlying entity is the enclosing application's concern.
type Participant struct {
	Kind string `json:"kind" validate:"required,max=50"`
	ID   string `json:"id" validate:"required,max=100"`
}

// Attempt is one participant's traversal of a survey: current position,
// lifecycle status and the eagerly maintained score.
type Attempt struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	SurveyID uint    `json:"survey_id" gorm:"not null;index"`
	Survey   *Survey `json:"-" gorm:"foreignKey:SurveyID"`

	ParticipantKind string `json:"participant_kind" gorm:"not null;size:50;index:idx_attempt_participant"`
	ParticipantID   string `json:"participant_id" gorm:"not null;size:100;index:idx_attempt_participant"`

	Status AttemptStatus `json:"status" gorm:"not null;default:in_progress;index" validate:"omitempty,attempt_status"`

	// CurrentQuestionID is nil when the attempt has run past the end of the
	// survey (or past the end of the scoped section).
	CurrentQuestionID *uint `json:"current_question_id"`

	// CurrentSectionID scopes navigation to one section when set; nil means
	// the whole survey is in scope.
	CurrentSectionID *uint `json:"current_section_id"`

	// Score is nil until the first scoring pass runs.
	Score *float64 `json:"score"`

	// ScoreBreakdown is the per-section score snapshot taken at the same
	// moment Score was computed.
	ScoreBreakdown datatypes.JSON `json:"score_breakdown"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Answers []Answer `json:"answers" gorm:"foreignKey:AttemptID"`
}

// Answer records one chosen option for one question of an attempt. Correct
// and Value are computed from the option at creation time and never revised.
type Answer struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	AttemptID  uint  `json:"attempt_id" gorm:"not null;index"`
	QuestionID uint  `json:"question_id" gorm:"not null;index"`
	OptionID   *uint `json:"option_id"`

	// OptionText is the raw participant-entered text; may be empty.
	OptionText string `json:"option_text" gorm:"type:text"`

	// OptionNumber is the parsed numeric custom input, when the option asked
	// for one.
	OptionNumber *float64 `json:"option_number"`

	Correct bool    `json:"correct" gorm:"default:false"`
	Value   float64 `json:"value" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Attempt) TableName() string { return "survey_attempts" }
func (Answer) TableName() string  { return "survey_answers" }

func (a *Attempt) Participant() Participant {
	return Participant{Kind: a.ParticipantKind, ID: a.ParticipantID}
}

func (a *Attempt) BelongsTo(p Participant) bool {
	return a.ParticipantKind == p.Kind && a.ParticipantID == p.ID
}

func (a *Attempt) IsInProgress() bool {
	return a.Status == AttemptInProgress
}

// Cancel, Confirm and Expire are the one-way lifecycle transitions. They only
// flip the status; persisting the write is the caller's job.

func (a *Attempt) Cancel()  { a.Status = AttemptCancelled }
func (a *Attempt) Confirm() { a.Status = AttemptConfirmed }
func (a *Attempt) Expire()  { a.Status = AttemptExpired }
