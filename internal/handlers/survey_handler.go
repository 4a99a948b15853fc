package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
	exportService services.ExportService
}

func NewSurveyHandler(
	surveyService services.SurveyService,
	exportService services.ExportService,
	logger utils.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		exportService: exportService,
	}
}

// ===== LOCALIZED RESPONSE STRUCTURES =====

type SurveyResponse struct {
	ID         uint              `json:"id"`
	Identifier string            `json:"identifier"`
	Name       string            `json:"name"`
	Sections   []SectionResponse `json:"sections"`
}

type SectionResponse struct {
	ID         uint               `json:"id"`
	Identifier string             `json:"identifier"`
	Name       string             `json:"name"`
	Position   int                `json:"position"`
	Questions  []QuestionResponse `json:"questions"`
}

type QuestionResponse struct {
	ID        uint                `json:"id"`
	Text      string              `json:"text"`
	Position  int                 `json:"position"`
	Type      models.QuestionType `json:"type"`
	Mandatory bool                `json:"mandatory"`
	Options   []OptionResponse    `json:"options"`
}

type OptionResponse struct {
	ID   uint              `json:"id"`
	Text string            `json:"text"`
	Type models.OptionType `json:"type"`
}

// GetSurvey returns the active survey for an identifier, localized. The
// response never leaks correctness flags or weights to participants.
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	identifier := c.Param("identifier")
	locale := c.DefaultQuery("locale", models.DefaultLocale)

	h.LogRequest(c, "Getting survey", "identifier", identifier, "locale", locale)

	survey, err := h.surveyService.FindActiveByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	structure, err := h.surveyService.GetStructure(c.Request.Context(), survey.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, localizeSurvey(structure, locale))
}

// ExportResults streams the confirmed attempt results for a survey. The
// format query parameter selects xlsx (default) or csv.
func (h *SurveyHandler) ExportResults(c *gin.Context) {
	identifier := c.Param("identifier")
	format := c.DefaultQuery("format", "xlsx")

	h.LogRequest(c, "Exporting survey results", "identifier", identifier, "format", format)

	survey, err := h.surveyService.FindActiveByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	surveyID := survey.ID

	switch format {
	case "xlsx":
		data, err := h.exportService.ExportResultsToExcel(c.Request.Context(), surveyID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="survey_results.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.exportService.ExportResultsToCSV(c.Request.Context(), surveyID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="survey_results.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
	}
}

func (h *SurveyHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Survey not found",
		})
	default:
		h.LogError(c, err, "Survey request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

func localizeSurvey(survey *models.Survey, locale string) SurveyResponse {
	resp := SurveyResponse{
		ID:         survey.ID,
		Identifier: survey.Identifier,
		Name:       survey.NameIn(locale),
	}
	for i := range survey.Sections {
		section := &survey.Sections[i]
		secResp := SectionResponse{
			ID:         section.ID,
			Identifier: section.Identifier,
			Name:       section.NameIn(locale),
			Position:   section.Position,
		}
		for j := range section.Questions {
			question := &section.Questions[j]
			qResp := QuestionResponse{
				ID:        question.ID,
				Text:      question.TextIn(locale),
				Position:  question.Position,
				Type:      question.Type,
				Mandatory: question.Mandatory,
			}
			for k := range question.Options {
				option := &question.Options[k]
				qResp.Options = append(qResp.Options, OptionResponse{
					ID:   option.ID,
					Text: option.TextIn(locale),
					Type: option.Type,
				})
			}
			secResp.Questions = append(secResp.Questions, qResp)
		}
		resp.Sections = append(resp.Sections, secResp)
	}
	return resp
}
