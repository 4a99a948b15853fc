package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/surveyforge/survey-service/internal/repositories"
	"github.com/surveyforge/survey-service/internal/utils"
)

// ExportService renders confirmed attempt results for a survey as a
// spreadsheet. Each row is one confirmed attempt; the per-section score
// columns come from the stored breakdown, so exports do not rescore.
type ExportService interface {
	ExportResultsToExcel(ctx context.Context, surveyID uint) ([]byte, error)
	ExportResultsToCSV(ctx context.Context, surveyID uint) ([]byte, error)
}

type exportService struct {
	repo    repositories.Repository
	surveys SurveyService
	logger  utils.Logger
}

func NewExportService(repo repositories.Repository, surveys SurveyService, logger utils.Logger) ExportService {
	return &exportService{
		repo:    repo,
		surveys: surveys,
		logger:  logger,
	}
}

type resultRow struct {
	headers []string
	values  [][]interface{}
}

func (s *exportService) ExportResultsToExcel(ctx context.Context, surveyID uint) ([]byte, error) {
	table, err := s.buildResultsTable(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range table.headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range table.values {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *exportService) ExportResultsToCSV(ctx context.Context, surveyID uint) ([]byte, error) {
	table, err := s.buildResultsTable(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(table.headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range table.values {
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = fmt.Sprintf("%v", value)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return []byte(buf.String()), nil
}

func (s *exportService) buildResultsTable(ctx context.Context, surveyID uint) (*resultRow, error) {
	structure, err := s.surveys.GetStructure(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	nav := NewNavigator(structure)

	attempts, err := s.repo.Attempt().GetConfirmedBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed attempts: %w", err)
	}

	headers := []string{"Participant Kind", "Participant ID", "Status", "Confirmed At", "Total Score"}
	sectionColumns := make([]string, 0, len(nav.Sections()))
	for _, section := range nav.Sections() {
		sectionColumns = append(sectionColumns, section.Identifier)
		headers = append(headers, fmt.Sprintf("Score (%s)", section.Identifier))
	}

	table := &resultRow{headers: headers}

	for _, attempt := range attempts {
		row := []interface{}{
			attempt.ParticipantKind,
			attempt.ParticipantID,
			string(attempt.Status),
			attempt.UpdatedAt.Format("2006-01-02 15:04:05"),
		}

		if attempt.Score != nil {
			row = append(row, *attempt.Score)
		} else {
			row = append(row, "")
		}

		breakdown := map[string]float64{}
		if len(attempt.ScoreBreakdown) > 0 {
			var sections []SectionScore
			if err := json.Unmarshal(attempt.ScoreBreakdown, &sections); err != nil {
				s.logger.Warn("Skipping unreadable score breakdown",
					"attempt_id", attempt.ID,
					"error", err)
			}
			for _, sc := range sections {
				breakdown[sc.Identifier] = sc.Score
			}
		}

		for _, identifier := range sectionColumns {
			if score, ok := breakdown[identifier]; ok {
				row = append(row, score)
			} else {
				row = append(row, "")
			}
		}

		table.values = append(table.values, row)
	}

	return table, nil
}
