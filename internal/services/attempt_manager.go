package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/surveyforge/survey-service/internal/events"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
	"github.com/surveyforge/survey-service/internal/validator"
)

// SubmitAnswerRequest carries one answer submission. Single-select questions
// take exactly one option id; multi-select questions may take several.
type SubmitAnswerRequest struct {
	QuestionID  uint   `json:"question_id" validate:"required"`
	OptionIDs   []uint `json:"option_ids" validate:"required,min=1"`
	CustomInput string `json:"custom_input"`
}

// AttemptManager orchestrates the attempt workflows: every state-changing
// operation runs inside a single transaction and either fully advances the
// attempt (position, answer ledger, score, status) or leaves it untouched.
type AttemptManager interface {
	Create(ctx context.Context, participant models.Participant, surveyIdentifier string) (*models.Attempt, error)
	GetByID(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error)
	SetSection(ctx context.Context, participant models.Participant, attemptID, sectionID uint) (*models.Attempt, error)
	SubmitAnswer(ctx context.Context, participant models.Participant, attemptID uint, req *SubmitAnswerRequest) (*models.Attempt, error)
	SkipQuestion(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error)
	PreviousQuestion(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error)
	Confirm(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error)

	// Read-only queries
	Progress(ctx context.Context, participant models.Participant, attemptID uint) (float64, error)
	ScoreBySection(ctx context.Context, participant models.Participant, attemptID uint) ([]SectionScore, error)
	IsFirstQuestion(ctx context.Context, participant models.Participant, attemptID uint) (bool, error)
	IsLastQuestion(ctx context.Context, participant models.Participant, attemptID uint) (bool, error)
	CorrectAnswers(ctx context.Context, participant models.Participant, attemptID uint) ([]*models.Answer, error)
	IncorrectAnswers(ctx context.Context, participant models.Participant, attemptID uint) ([]*models.Answer, error)
}

type attemptManager struct {
	repo      repositories.Repository
	surveys   SurveyService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewAttemptManager(
	repo repositories.Repository,
	surveys SurveyService,
	publisher events.EventPublisher,
	logger utils.Logger,
	v *validator.Validator,
) AttemptManager {
	return &attemptManager{
		repo:      repo,
		surveys:   surveys,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== WORKFLOWS =====

// Create cancels every in-progress attempt the participant still holds, then
// creates a new attempt against the active survey for the identifier,
// positioned at the survey's first question. The whole workflow runs under a
// serializable transaction so two racing creates cannot both insert an
// in-progress attempt for the same participant.
//
// The attempt-count limit is checked after the cancellation step, matching
// the one-active-attempt-at-a-time semantics; when the limit check fails the
// transaction rolls back and the cancellations are undone with it.
func (m *attemptManager) Create(ctx context.Context, participant models.Participant, surveyIdentifier string) (*models.Attempt, error) {
	m.logger.Info("Creating survey attempt",
		"participant_kind", participant.Kind,
		"participant_id", participant.ID,
		"survey_identifier", surveyIdentifier)

	if err := m.validator.Validate(&participant); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	txRepo, err := m.repo.(repositories.TransactionRepository).BeginSerializable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	cancelled, err := m.cancelInProgressAttempts(ctx, txRepo, participant)
	if err != nil {
		return nil, err
	}

	survey, err := txRepo.Survey().GetActiveByIdentifier(ctx, surveyIdentifier)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrSurveyNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve survey %q: %w", surveyIdentifier, err)
	}

	if survey.AttemptsNumber != 0 {
		var count int64
		count, err = txRepo.Attempt().CountByParticipantAndSurvey(ctx, participant, survey.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count attempts: %w", err)
		}
		if count >= int64(survey.AttemptsNumber) {
			err = ErrAttemptLimitExceeded
			return nil, err
		}
	}

	structure, err := txRepo.Survey().GetByIDWithStructure(ctx, survey.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey structure: %w", err)
	}
	nav := NewNavigator(structure)

	attempt := &models.Attempt{
		SurveyID:        survey.ID,
		ParticipantKind: participant.Kind,
		ParticipantID:   participant.ID,
		Status:          models.AttemptInProgress,
	}
	if first := nav.FirstQuestion(); first != nil {
		id := first.ID
		attempt.CurrentQuestionID = &id
	}

	if err = txRepo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, prev := range cancelled {
		m.publish(ctx, events.NewAttemptEvent(events.AttemptCancelled, prev))
	}
	m.publish(ctx, events.NewAttemptEvent(events.AttemptCreated, attempt))

	m.logger.Info("Survey attempt created",
		"attempt_id", attempt.ID,
		"survey_id", survey.ID,
		"cancelled_previous", len(cancelled))

	return attempt, nil
}

func (m *attemptManager) GetByID(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error) {
	attempt, err := m.repo.Attempt().GetByIDWithAnswers(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if !attempt.BelongsTo(participant) {
		return nil, NewAccessError(participant.Kind, participant.ID, attemptID, "read")
	}
	return attempt, nil
}

// SetSection jumps the attempt's scope to one section and resets the current
// question to the first question of that scope.
func (m *attemptManager) SetSection(ctx context.Context, participant models.Participant, attemptID, sectionID uint) (*models.Attempt, error) {
	attempt, err := m.activeAttempt(ctx, participant, attemptID, "edit")
	if err != nil {
		return nil, err
	}

	nav, err := m.navigatorFor(ctx, attempt.SurveyID)
	if err != nil {
		return nil, err
	}

	if nav.Section(sectionID) == nil {
		return nil, ErrSectionNotFound
	}

	attempt.CurrentSectionID = &sectionID
	attempt.CurrentQuestionID = nil
	if first := nav.FirstQuestionInScope(&sectionID); first != nil {
		id := first.ID
		attempt.CurrentQuestionID = &id
	}

	if err := m.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to update attempt: %w", err)
	}

	return attempt, nil
}

// SubmitAnswer replaces any existing answer for the attempt's current
// question, advances over the chosen option's branch edge and refreshes the
// score, all in one transaction.
func (m *attemptManager) SubmitAnswer(ctx context.Context, participant models.Participant, attemptID uint, req *SubmitAnswerRequest) (*models.Attempt, error) {
	m.logger.Info("Submitting answer",
		"attempt_id", attemptID,
		"question_id", req.QuestionID,
		"options", len(req.OptionIDs))

	if err := m.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := m.activeAttempt(ctx, participant, attemptID, "answer")
	if err != nil {
		return nil, err
	}

	if attempt.CurrentQuestionID == nil || *attempt.CurrentQuestionID != req.QuestionID {
		return nil, ErrQuestionMismatch
	}

	nav, err := m.navigatorFor(ctx, attempt.SurveyID)
	if err != nil {
		return nil, err
	}

	question := nav.Question(req.QuestionID)
	if question == nil {
		return nil, ErrQuestionMismatch
	}

	chosen, err := optionsOf(question, req.OptionIDs)
	if err != nil {
		return nil, err
	}
	if !question.IsMultiSelect() && len(chosen) != 1 {
		return nil, NewValidationError("option_ids", "single-select questions take exactly one option", len(chosen))
	}

	optionNumber, err := parseCustomInput(chosen, req.CustomInput)
	if err != nil {
		return nil, err
	}

	newAnswers := make([]*models.Answer, 0, len(chosen))
	for _, option := range chosen {
		value, ferr := EvaluateAnswerValue(option, optionNumber)
		if ferr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCustomInput, ferr)
		}
		optionID := option.ID
		newAnswers = append(newAnswers, &models.Answer{
			AttemptID:    attempt.ID,
			QuestionID:   question.ID,
			OptionID:     &optionID,
			OptionText:   req.CustomInput,
			OptionNumber: optionNumber,
			Correct:      option.Correct,
			Value:        value,
		})
	}

	txRepo, err := m.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	if err = txRepo.Answer().DeleteByAttemptAndQuestion(ctx, attempt.ID, question.ID); err != nil {
		return nil, fmt.Errorf("failed to replace answer: %w", err)
	}
	for _, answer := range newAnswers {
		if err = txRepo.Answer().Create(ctx, answer); err != nil {
			return nil, fmt.Errorf("failed to create answer: %w", err)
		}
	}

	attempt.CurrentQuestionID = nav.ResolveTarget(attempt, nextTargetOf(chosen))

	if err = m.collectScores(ctx, txRepo, nav, attempt); err != nil {
		return nil, err
	}
	if err = txRepo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to update attempt: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	m.publish(ctx, events.NewAttemptEvent(events.AnswerSubmitted, attempt))

	return attempt, nil
}

// SkipQuestion advances over the current question's explicit skip edge
// without recording an answer. Skipping past the end is a no-op.
func (m *attemptManager) SkipQuestion(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error) {
	attempt, err := m.activeAttempt(ctx, participant, attemptID, "skip")
	if err != nil {
		return nil, err
	}
	if attempt.CurrentQuestionID == nil {
		return attempt, nil
	}

	nav, err := m.navigatorFor(ctx, attempt.SurveyID)
	if err != nil {
		return nil, err
	}

	question := nav.Question(*attempt.CurrentQuestionID)
	if question == nil {
		return nil, ErrQuestionMismatch
	}

	attempt.CurrentQuestionID = nav.ResolveTarget(attempt, question.SkipToQuestionID)

	if err := m.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to update attempt: %w", err)
	}

	return attempt, nil
}

// PreviousQuestion restores the last answered question before the current
// position (or the first question in scope when nothing was answered), then
// discards every answer strictly ahead of the restored position in global
// order. Going back invalidates the forward path regardless of section scope.
func (m *attemptManager) PreviousQuestion(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error) {
	attempt, err := m.activeAttempt(ctx, participant, attemptID, "go back")
	if err != nil {
		return nil, err
	}

	nav, err := m.navigatorFor(ctx, attempt.SurveyID)
	if err != nil {
		return nil, err
	}

	txRepo, err := m.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	answers, err := txRepo.Answer().GetByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	previous := nav.PreviousAnsweredQuestions(attempt, answers)

	attempt.CurrentQuestionID = nil
	if len(previous) > 0 {
		id := previous[len(previous)-1].ID
		attempt.CurrentQuestionID = &id
	} else if first := nav.FirstQuestionInScope(attempt.CurrentSectionID); first != nil {
		id := first.ID
		attempt.CurrentQuestionID = &id
	}

	remaining := nav.RemainingQuestions(attempt)
	if len(remaining) > 0 {
		ids := make([]uint, 0, len(remaining))
		for _, q := range remaining {
			ids = append(ids, q.ID)
		}
		if err = txRepo.Answer().DeleteByAttemptAndQuestions(ctx, attempt.ID, ids); err != nil {
			return nil, fmt.Errorf("failed to discard forward answers: %w", err)
		}
	}

	if err = m.collectScores(ctx, txRepo, nav, attempt); err != nil {
		return nil, err
	}
	if err = txRepo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to update attempt: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return attempt, nil
}

// Confirm finishes the attempt. Any previously confirmed attempt for the
// same participant and survey expires so exactly one confirmed attempt stays
// authoritative.
func (m *attemptManager) Confirm(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error) {
	attempt, err := m.activeAttempt(ctx, participant, attemptID, "confirm")
	if err != nil {
		return nil, err
	}

	txRepo, err := m.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	expired, err := txRepo.Attempt().GetConfirmedByParticipantAndSurvey(ctx, participant, attempt.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed attempts: %w", err)
	}
	for _, prev := range expired {
		prev.Expire()
		if err = txRepo.Attempt().UpdateStatus(ctx, prev.ID, models.AttemptExpired); err != nil {
			return nil, fmt.Errorf("failed to expire attempt %d: %w", prev.ID, err)
		}
	}

	attempt.Confirm()
	if err = txRepo.Attempt().UpdateStatus(ctx, attempt.ID, models.AttemptConfirmed); err != nil {
		return nil, fmt.Errorf("failed to confirm attempt: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, prev := range expired {
		m.publish(ctx, events.NewAttemptEvent(events.AttemptExpired, prev))
	}
	m.publish(ctx, events.NewAttemptEvent(events.AttemptConfirmed, attempt))

	m.logger.Info("Survey attempt confirmed",
		"attempt_id", attempt.ID,
		"expired_previous", len(expired))

	return attempt, nil
}

// ===== READ-ONLY QUERIES =====

// Progress is answered / (answered + remaining + 1); the +1 stands for the
// current question, which counts as neither answered nor remaining.
func (m *attemptManager) Progress(ctx context.Context, participant models.Participant, attemptID uint) (float64, error) {
	attempt, nav, answers, err := m.attemptView(ctx, participant, attemptID)
	if err != nil {
		return 0, err
	}

	answered := len(answers)
	remaining := len(nav.RemainingQuestions(attempt))
	return float64(answered) / float64(answered+remaining+1), nil
}

func (m *attemptManager) ScoreBySection(ctx context.Context, participant models.Participant, attemptID uint) ([]SectionScore, error) {
	_, nav, answers, err := m.attemptView(ctx, participant, attemptID)
	if err != nil {
		return nil, err
	}
	return ScoreBySection(nav, answers), nil
}

func (m *attemptManager) IsFirstQuestion(ctx context.Context, participant models.Participant, attemptID uint) (bool, error) {
	attempt, nav, _, err := m.attemptView(ctx, participant, attemptID)
	if err != nil {
		return false, err
	}
	return nav.IsFirstQuestion(attempt), nil
}

func (m *attemptManager) IsLastQuestion(ctx context.Context, participant models.Participant, attemptID uint) (bool, error) {
	attempt, nav, _, err := m.attemptView(ctx, participant, attemptID)
	if err != nil {
		return false, err
	}
	return nav.IsLastQuestion(attempt), nil
}

func (m *attemptManager) CorrectAnswers(ctx context.Context, participant models.Participant, attemptID uint) ([]*models.Answer, error) {
	return m.answersByCorrectness(ctx, participant, attemptID, true)
}

func (m *attemptManager) IncorrectAnswers(ctx context.Context, participant models.Participant, attemptID uint) ([]*models.Answer, error) {
	return m.answersByCorrectness(ctx, participant, attemptID, false)
}

// ===== HELPERS =====

func (m *attemptManager) activeAttempt(ctx context.Context, participant models.Participant, attemptID uint, action string) (*models.Attempt, error) {
	attempt, err := m.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if !attempt.BelongsTo(participant) {
		return nil, NewAccessError(participant.Kind, participant.ID, attemptID, action)
	}
	if !attempt.IsInProgress() {
		return nil, ErrAttemptNotActive
	}
	return attempt, nil
}

func (m *attemptManager) navigatorFor(ctx context.Context, surveyID uint) (*Navigator, error) {
	structure, err := m.surveys.GetStructure(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return NewNavigator(structure), nil
}

func (m *attemptManager) attemptView(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, *Navigator, []*models.Answer, error) {
	attempt, err := m.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, nil, ErrAttemptNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if !attempt.BelongsTo(participant) {
		return nil, nil, nil, NewAccessError(participant.Kind, participant.ID, attemptID, "read")
	}

	nav, err := m.navigatorFor(ctx, attempt.SurveyID)
	if err != nil {
		return nil, nil, nil, err
	}

	answers, err := m.repo.Answer().GetByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load answers: %w", err)
	}

	return attempt, nav, answers, nil
}

func (m *attemptManager) answersByCorrectness(ctx context.Context, participant models.Participant, attemptID uint, correct bool) ([]*models.Answer, error) {
	_, _, answers, err := m.attemptView(ctx, participant, attemptID)
	if err != nil {
		return nil, err
	}
	var result []*models.Answer
	for _, ans := range answers {
		if ans.Correct == correct {
			result = append(result, ans)
		}
	}
	return result, nil
}

func (m *attemptManager) cancelInProgressAttempts(ctx context.Context, repo repositories.Repository, participant models.Participant) ([]*models.Attempt, error) {
	inProgress, err := repo.Attempt().GetInProgressByParticipant(ctx, participant)
	if err != nil {
		return nil, fmt.Errorf("failed to load in-progress attempts: %w", err)
	}
	for _, prev := range inProgress {
		prev.Cancel()
		if err := repo.Attempt().UpdateStatus(ctx, prev.ID, models.AttemptCancelled); err != nil {
			return nil, fmt.Errorf("failed to cancel attempt %d: %w", prev.ID, err)
		}
	}
	return inProgress, nil
}

// collectScores eagerly recomputes the total score and the per-section
// breakdown from the current answer ledger and stores both on the attempt.
func (m *attemptManager) collectScores(ctx context.Context, repo repositories.Repository, nav *Navigator, attempt *models.Attempt) error {
	answers, err := repo.Answer().GetByAttempt(ctx, attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to load answers for scoring: %w", err)
	}

	total := ComputeScore(nav, answers)
	attempt.Score = &total

	breakdown, err := json.Marshal(ScoreBySection(nav, answers))
	if err != nil {
		return fmt.Errorf("failed to marshal score breakdown: %w", err)
	}
	attempt.ScoreBreakdown = breakdown

	return nil
}

func (m *attemptManager) publish(ctx context.Context, event *events.AttemptEvent) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishAttemptEvent(ctx, event); err != nil {
		m.logger.Warn("Failed to publish attempt event",
			"event_type", event.Type,
			"attempt_id", event.AttemptID,
			"error", err)
	}
}

// optionsOf resolves the chosen option ids against the question, in the
// question's own option order.
func optionsOf(question *models.Question, optionIDs []uint) ([]*models.Option, error) {
	wanted := make(map[uint]bool, len(optionIDs))
	for _, id := range optionIDs {
		wanted[id] = true
	}

	var chosen []*models.Option
	for i := range question.Options {
		o := &question.Options[i]
		if wanted[o.ID] {
			chosen = append(chosen, o)
			delete(wanted, o.ID)
		}
	}
	if len(wanted) > 0 {
		return nil, ErrOptionNotFound
	}
	return chosen, nil
}

// parseCustomInput parses the numeric custom input when any chosen option
// requires one.
func parseCustomInput(chosen []*models.Option, customInput string) (*float64, error) {
	required := false
	for _, o := range chosen {
		if o.RequiresCustomInput() || o.HasFormula() {
			required = true
			break
		}
	}
	if !required {
		return nil, nil
	}

	trimmed := strings.TrimSpace(customInput)
	if trimmed == "" {
		return nil, ErrInvalidCustomInput
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidCustomInput, customInput)
	}
	return &value, nil
}

// nextTargetOf picks the branch edge to advance over: the first chosen
// option carrying one, in option order.
func nextTargetOf(chosen []*models.Option) *uint {
	for _, o := range chosen {
		if o.NextQuestionID != nil {
			return o.NextQuestionID
		}
	}
	return nil
}
