package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func localeStr(v string) *string { return &v }

func TestLocalizedText(t *testing.T) {
	question := Question{
		Text:       "What is your role?",
		LocaleText: localeStr("Qual é a sua função?"),
	}

	assert.Equal(t, "What is your role?", question.TextIn(DefaultLocale))
	assert.Equal(t, "What is your role?", question.TextIn(""))
	assert.Equal(t, "Qual é a sua função?", question.TextIn("pt"))
}

func TestLocalizedTextFallsBackToBase(t *testing.T) {
	survey := Survey{Name: "Onboarding"}
	assert.Equal(t, "Onboarding", survey.NameIn("pt"))

	section := Section{Name: "Basics", LocaleName: localeStr("")}
	assert.Equal(t, "Basics", section.NameIn("pt"))
}

func TestAttemptLifecycleTransitions(t *testing.T) {
	attempt := Attempt{Status: AttemptInProgress}
	assert.True(t, attempt.IsInProgress())

	attempt.Confirm()
	assert.Equal(t, AttemptConfirmed, attempt.Status)
	assert.False(t, attempt.IsInProgress())

	attempt.Expire()
	assert.Equal(t, AttemptExpired, attempt.Status)
}

func TestAttemptBelongsTo(t *testing.T) {
	attempt := Attempt{ParticipantKind: "user", ParticipantID: "u-1"}

	assert.True(t, attempt.BelongsTo(Participant{Kind: "user", ID: "u-1"}))
	assert.False(t, attempt.BelongsTo(Participant{Kind: "bot", ID: "u-1"}))
	assert.False(t, attempt.BelongsTo(Participant{Kind: "user", ID: "u-2"}))
}
