package models

import (
	"time"
)

type QuestionType string

const (
	QuestionSingleSelect QuestionType = "single_select"
	QuestionMultiSelect  QuestionType = "multi_select"
)

type OptionType string

const (
	OptionChoice OptionType = "choice" // plain selectable choice
	OptionNumber OptionType = "number" // choice requiring a numeric custom input
)

// Survey is the read-only content model: ordered sections, each with ordered
// questions, each with options. Authoring lives outside this service; the
// attempt core only queries it.
type Survey struct {
	ID                uint    `json:"id" gorm:"primaryKey"`
	Identifier        string  `json:"identifier" gorm:"not null;size:100;uniqueIndex" validate:"required,max=100"`
	Name              string  `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	Description       *string `json:"description" gorm:"type:text"`
	LocaleName        *string `json:"locale_name" gorm:"size:200"`
	LocaleDescription *string `json:"locale_description" gorm:"type:text"`
	Active            bool    `json:"active" gorm:"default:true;index"`

	// AttemptsNumber caps attempts per participant; 0 means unlimited.
	AttemptsNumber int `json:"attempts_number" gorm:"default:0" validate:"min=0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sections []Section `json:"sections" gorm:"foreignKey:SurveyID"`
}

type Section struct {
	ID                uint    `json:"id" gorm:"primaryKey"`
	SurveyID          uint    `json:"survey_id" gorm:"not null;index"`
	Identifier        string  `json:"identifier" gorm:"size:100"`
	Name              string  `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	Description       *string `json:"description" gorm:"type:text"`
	LocaleName        *string `json:"locale_name" gorm:"size:200"`
	LocaleDescription *string `json:"locale_description" gorm:"type:text"`

	// Position is the unique ordering key of the section within its survey.
	Position int `json:"position" gorm:"not null;index"`

	Questions []Question `json:"questions" gorm:"foreignKey:SectionID"`
}

type Question struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	SectionID   uint         `json:"section_id" gorm:"not null;index"`
	Text        string       `json:"text" gorm:"not null;type:text" validate:"required"`
	Description *string      `json:"description" gorm:"type:text"`
	LocaleText  *string      `json:"locale_text" gorm:"type:text"`
	Type        QuestionType `json:"questions_type" gorm:"column:questions_type;not null;default:single_select" validate:"omitempty,questions_type"`
	Mandatory   bool         `json:"mandatory" gorm:"default:false"`

	// Position is the unique ordering key of the question within its section.
	Position int `json:"position" gorm:"not null;index"`

	// SkipToQuestionID is the explicit skip edge of the branch graph. It may
	// point anywhere, including backward; it is followed one edge at a time.
	SkipToQuestionID *uint `json:"skip_to_question_id"`

	Options []Option `json:"options" gorm:"foreignKey:QuestionID"`

	Section *Section `json:"-" gorm:"foreignKey:SectionID;references:ID"`
}

type Option struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	QuestionID uint       `json:"question_id" gorm:"not null;index"`
	Text       string     `json:"text" gorm:"size:500"`
	LocaleText *string    `json:"locale_text" gorm:"size:500"`
	Type       OptionType `json:"options_type" gorm:"column:options_type;not null;default:choice" validate:"omitempty,options_type"`
	Position   int        `json:"position" gorm:"default:0"`
	Correct    bool       `json:"correct" gorm:"default:false"`

	// Weight is the numeric score contribution of this option. For options
	// with a formula the effective value is computed from the participant's
	// numeric input instead.
	Weight        float64 `json:"weight" gorm:"default:0"`
	WeightFormula *string `json:"weight_formula" gorm:"size:500"`

	// NextQuestionID is the branch edge advanced over when this option is
	// chosen. Nil means fall off the end of the survey.
	NextQuestionID *uint `json:"next_question_id"`
}

func (Survey) TableName() string   { return "survey_surveys" }
func (Section) TableName() string  { return "survey_sections" }
func (Question) TableName() string { return "survey_questions" }
func (Option) TableName() string   { return "survey_options" }

func (q *Question) IsMultiSelect() bool {
	return q.Type == QuestionMultiSelect
}

func (q *Question) CorrectOptions() []Option {
	var result []Option
	for _, o := range q.Options {
		if o.Correct {
			result = append(result, o)
		}
	}
	return result
}

func (o *Option) HasFormula() bool {
	return o.WeightFormula != nil && *o.WeightFormula != ""
}

// RequiresCustomInput reports whether answering with this option needs a
// parsed numeric input from the participant.
func (o *Option) RequiresCustomInput() bool {
	return o.Type == OptionNumber
}

// HasMultiSelectQuestions reports whether any question of the survey is
// multi-select, which switches the scoring engine to the partial-credit path.
func (s *Survey) HasMultiSelectQuestions() bool {
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			if q.IsMultiSelect() {
				return true
			}
		}
	}
	return false
}
