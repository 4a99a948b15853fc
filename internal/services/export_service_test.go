package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

func newTestExportService(t *testing.T) (ExportService, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo(testSurvey())
	logger := testLogger()
	surveyService := NewSurveyService(repo, nil, logger)
	return NewExportService(repo, surveyService, logger), repo
}

func seedConfirmedAttempt(t *testing.T, repo *fakeRepo, participantID string, score float64) {
	t.Helper()
	attempt := &models.Attempt{
		SurveyID:        1,
		ParticipantKind: "user",
		ParticipantID:   participantID,
		Status:          models.AttemptConfirmed,
		Score:           floatPtr(score),
		ScoreBreakdown:  datatypes.JSON(`[{"identifier":"basics","score":4},{"identifier":"advanced","score":4}]`),
	}
	require.NoError(t, repo.Attempt().Create(context.Background(), attempt))
}

func TestExportService_CSV(t *testing.T) {
	svc, repo := newTestExportService(t)
	seedConfirmedAttempt(t, repo, "u-1", 8)
	seedConfirmedAttempt(t, repo, "u-2", 4)

	data, err := svc.ExportResultsToCSV(context.Background(), 1)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Participant Kind", "Participant ID", "Status", "Confirmed At",
		"Total Score", "Score (basics)", "Score (advanced)",
	}, records[0])

	assert.Equal(t, "user", records[1][0])
	assert.Equal(t, "u-1", records[1][1])
	assert.Equal(t, "confirmed", records[1][2])
	assert.Equal(t, "8", records[1][4])
	assert.Equal(t, "4", records[1][5])
	assert.Equal(t, "4", records[1][6])
}

func TestExportService_CSV_SkipsUnconfirmedAttempts(t *testing.T) {
	svc, repo := newTestExportService(t)
	seedConfirmedAttempt(t, repo, "u-1", 8)

	inProgress := &models.Attempt{
		SurveyID:        1,
		ParticipantKind: "user",
		ParticipantID:   "u-2",
		Status:          models.AttemptInProgress,
	}
	require.NoError(t, repo.Attempt().Create(context.Background(), inProgress))

	data, err := svc.ExportResultsToCSV(context.Background(), 1)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestExportService_Excel(t *testing.T) {
	svc, repo := newTestExportService(t)
	seedConfirmedAttempt(t, repo, "u-1", 8)

	data, err := svc.ExportResultsToExcel(context.Background(), 1)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Participant Kind", rows[0][0])
	assert.Equal(t, "u-1", rows[1][1])
}
