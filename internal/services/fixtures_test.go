package services

import (
	"context"
	"sort"

	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
	"gorm.io/gorm"
)

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

// testSurvey builds the standard two-section fixture used across the package:
//
//	basics   (pos 1): Q101 (pos 1), Q102 (pos 2)
//	advanced (pos 2): Q201 (pos 1), Q202 (pos 2)
//
// Every question has a correct option worth 4 (id = question id*10+1) and an
// incorrect option worth 0 (id = question id*10+2); correct options chain to
// the next question in order, the last one falls off the end.
func testSurvey() *models.Survey {
	return &models.Survey{
		ID:         1,
		Identifier: "onboarding",
		Name:       "Onboarding Survey",
		Active:     true,
		Sections: []models.Section{
			{
				ID:         10,
				SurveyID:   1,
				Identifier: "basics",
				Name:       "Basics",
				Position:   1,
				Questions: []models.Question{
					testQuestion(101, 10, 1, uintPtr(102)),
					testQuestion(102, 10, 2, uintPtr(201)),
				},
			},
			{
				ID:         20,
				SurveyID:   1,
				Identifier: "advanced",
				Name:       "Advanced",
				Position:   2,
				Questions: []models.Question{
					testQuestion(201, 20, 1, uintPtr(202)),
					testQuestion(202, 20, 2, nil),
				},
			},
		},
	}
}

func testQuestion(id, sectionID uint, position int, next *uint) models.Question {
	return models.Question{
		ID:        id,
		SectionID: sectionID,
		Text:      "question",
		Type:      models.QuestionSingleSelect,
		Position:  position,
		Options: []models.Option{
			{ID: id*10 + 1, QuestionID: id, Text: "right", Correct: true, Weight: 4, NextQuestionID: next},
			{ID: id*10 + 2, QuestionID: id, Text: "wrong", Correct: false, Weight: 0, NextQuestionID: next},
		},
	}
}

func testNavigator() *Navigator {
	return NewNavigator(testSurvey())
}

func testLogger() utils.Logger {
	return utils.NewDevelopmentLogger()
}

// ===== IN-MEMORY REPOSITORY =====

// fakeRepo is an in-memory Repository and TransactionRepository. Transactions
// are not isolated; Begin returns the same store and Commit and Rollback are
// accepted without effect, which is enough for single-goroutine workflow
// tests that only assert on the error path and the final state.
type fakeRepo struct {
	surveyRepo  *fakeSurveyRepo
	attemptRepo *fakeAttemptRepo
	answerRepo  *fakeAnswerRepo
}

func newFakeRepo(surveys ...*models.Survey) *fakeRepo {
	store := &fakeStore{
		surveys:  make(map[uint]*models.Survey),
		attempts: make(map[uint]*models.Attempt),
	}
	for _, s := range surveys {
		store.surveys[s.ID] = s
	}
	return &fakeRepo{
		surveyRepo:  &fakeSurveyRepo{store: store},
		attemptRepo: &fakeAttemptRepo{store: store},
		answerRepo:  &fakeAnswerRepo{store: store},
	}
}

type fakeStore struct {
	surveys       map[uint]*models.Survey
	attempts      map[uint]*models.Attempt
	answers       []*models.Answer
	nextAttemptID uint
	nextAnswerID  uint
}

func (f *fakeRepo) Survey() repositories.SurveyRepository   { return f.surveyRepo }
func (f *fakeRepo) Attempt() repositories.AttemptRepository { return f.attemptRepo }
func (f *fakeRepo) Answer() repositories.AnswerRepository   { return f.answerRepo }

func (f *fakeRepo) Begin(ctx context.Context) (repositories.Repository, error) { return f, nil }
func (f *fakeRepo) BeginSerializable(ctx context.Context) (repositories.Repository, error) {
	return f, nil
}
func (f *fakeRepo) Commit(ctx context.Context) error   { return nil }
func (f *fakeRepo) Rollback(ctx context.Context) error { return nil }

type fakeSurveyRepo struct {
	store *fakeStore
}

func (r *fakeSurveyRepo) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	if s, ok := r.store.surveys[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSurveyRepo) GetByIDWithStructure(ctx context.Context, id uint) (*models.Survey, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSurveyRepo) GetActiveByIdentifier(ctx context.Context, identifier string) (*models.Survey, error) {
	for _, s := range r.store.surveys {
		if s.Identifier == identifier && s.Active {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSurveyRepo) GetSectionByID(ctx context.Context, id uint) (*models.Section, error) {
	for _, s := range r.store.surveys {
		for i := range s.Sections {
			if s.Sections[i].ID == id {
				return &s.Sections[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSurveyRepo) GetQuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	for _, s := range r.store.surveys {
		for i := range s.Sections {
			for j := range s.Sections[i].Questions {
				if s.Sections[i].Questions[j].ID == id {
					return &s.Sections[i].Questions[j], nil
				}
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSurveyRepo) GetOptionByID(ctx context.Context, id uint) (*models.Option, error) {
	options, err := r.GetOptionsByIDs(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	return options[0], nil
}

func (r *fakeSurveyRepo) GetOptionsByIDs(ctx context.Context, ids []uint) ([]*models.Option, error) {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var result []*models.Option
	for _, s := range r.store.surveys {
		for i := range s.Sections {
			for j := range s.Sections[i].Questions {
				q := &s.Sections[i].Questions[j]
				for k := range q.Options {
					if wanted[q.Options[k].ID] {
						result = append(result, &q.Options[k])
					}
				}
			}
		}
	}
	if len(result) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	return result, nil
}

type fakeAttemptRepo struct {
	store *fakeStore
}

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *models.Attempt) error {
	r.store.nextAttemptID++
	attempt.ID = r.store.nextAttemptID
	stored := *attempt
	r.store.attempts[attempt.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	if a, ok := r.store.attempts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttemptRepo) GetByIDWithAnswers(ctx context.Context, id uint) (*models.Attempt, error) {
	attempt, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, ans := range r.store.answers {
		if ans.AttemptID == id {
			attempt.Answers = append(attempt.Answers, *ans)
		}
	}
	return attempt, nil
}

func (r *fakeAttemptRepo) Update(ctx context.Context, attempt *models.Attempt) error {
	if _, ok := r.store.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *attempt
	stored.Answers = nil
	r.store.attempts[attempt.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) UpdateStatus(ctx context.Context, id uint, status models.AttemptStatus) error {
	a, ok := r.store.attempts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAttemptRepo) GetInProgressByParticipant(ctx context.Context, participant models.Participant) ([]*models.Attempt, error) {
	var result []*models.Attempt
	for _, a := range r.sorted() {
		if a.BelongsTo(participant) && a.IsInProgress() {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAttemptRepo) GetConfirmedByParticipantAndSurvey(ctx context.Context, participant models.Participant, surveyID uint) ([]*models.Attempt, error) {
	var result []*models.Attempt
	for _, a := range r.sorted() {
		if a.BelongsTo(participant) && a.SurveyID == surveyID && a.Status == models.AttemptConfirmed {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAttemptRepo) CountByParticipantAndSurvey(ctx context.Context, participant models.Participant, surveyID uint) (int64, error) {
	var count int64
	for _, a := range r.store.attempts {
		if a.BelongsTo(participant) && a.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var result []*models.Attempt
	for _, a := range r.sorted() {
		cp := *a
		result = append(result, &cp)
	}
	return result, int64(len(result)), nil
}

func (r *fakeAttemptRepo) GetConfirmedBySurvey(ctx context.Context, surveyID uint) ([]*models.Attempt, error) {
	var result []*models.Attempt
	for _, a := range r.sorted() {
		if a.SurveyID == surveyID && a.Status == models.AttemptConfirmed {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAttemptRepo) sorted() []*models.Attempt {
	result := make([]*models.Attempt, 0, len(r.store.attempts))
	for _, a := range r.store.attempts {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

type fakeAnswerRepo struct {
	store *fakeStore
}

func (r *fakeAnswerRepo) Create(ctx context.Context, answer *models.Answer) error {
	r.store.nextAnswerID++
	answer.ID = r.store.nextAnswerID
	stored := *answer
	r.store.answers = append(r.store.answers, &stored)
	return nil
}

func (r *fakeAnswerRepo) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.Answer, error) {
	var result []*models.Answer
	for _, ans := range r.store.answers {
		if ans.AttemptID == attemptID {
			cp := *ans
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAnswerRepo) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) ([]*models.Answer, error) {
	var result []*models.Answer
	for _, ans := range r.store.answers {
		if ans.AttemptID == attemptID && ans.QuestionID == questionID {
			cp := *ans
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeAnswerRepo) DeleteByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) error {
	return r.DeleteByAttemptAndQuestions(ctx, attemptID, []uint{questionID})
}

func (r *fakeAnswerRepo) DeleteByAttemptAndQuestions(ctx context.Context, attemptID uint, questionIDs []uint) error {
	drop := make(map[uint]bool, len(questionIDs))
	for _, id := range questionIDs {
		drop[id] = true
	}
	kept := r.store.answers[:0]
	for _, ans := range r.store.answers {
		if ans.AttemptID == attemptID && drop[ans.QuestionID] {
			continue
		}
		kept = append(kept, ans)
	}
	r.store.answers = kept
	return nil
}

func (r *fakeAnswerRepo) CountByAttempt(ctx context.Context, attemptID uint) (int64, error) {
	var count int64
	for _, ans := range r.store.answers {
		if ans.AttemptID == attemptID {
			count++
		}
	}
	return count, nil
}
