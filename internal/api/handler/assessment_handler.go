package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assessly/assessment-api/internal/api/metrics"
	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

type AssessmentHandler struct {
	assessments ports.AssessmentService
}

func NewAssessmentHandler(assessments ports.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// Create handles POST /v1/assessments.
//
// @Summary      Create an assessment
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAssessmentRequest  true  "Assessment details"
// @Success      201   {object}  domain.Assessment
// @Failure      402   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/assessments [post]
func (h *AssessmentHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createAssessmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	a, err := h.assessments.Create(c.Request().Context(), ports.CreateAssessmentInput{
		OrganizationID:  id.OrgID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return err
	}
	metrics.AssessmentsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, a)
}

// List handles GET /v1/assessments.
//
// @Summary      List assessments
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Assessment
// @Router       /v1/assessments [get]
func (h *AssessmentHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	list, err := h.assessments.List(c.Request().Context(), id.OrgID)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Assessment{}
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/assessments/:id.
//
// @Summary      Get an assessment
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assessment id"
// @Success      200  {object}  domain.Assessment
// @Failure      404  {object}  map[string]string
// @Router       /v1/assessments/{id} [get]
func (h *AssessmentHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	a, err := h.assessments.Get(c.Request().Context(), id.OrgID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Update handles PUT /v1/assessments/:id.
//
// @Summary      Update a draft assessment
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Assessment id"
// @Param        body  body      updateAssessmentRequest  true  "Assessment details"
// @Success      200   {object}  domain.Assessment
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/assessments/{id} [put]
func (h *AssessmentHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateAssessmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	a, err := h.assessments.Update(c.Request().Context(), ports.UpdateAssessmentInput{
		OrganizationID:  id.OrgID,
		AssessmentID:    c.Param("id"),
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// AddQuestion handles POST /v1/assessments/:id/questions.
//
// @Summary      Add a question to a draft assessment
// @Tags         assessments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Assessment id"
// @Param        body  body      addQuestionRequest  true  "Question"
// @Success      201   {object}  domain.Assessment
// @Failure      402   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/assessments/{id}/questions [post]
func (h *AssessmentHandler) AddQuestion(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req addQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	a, err := h.assessments.AddQuestion(c.Request().Context(), ports.AddQuestionInput{
		OrganizationID: id.OrgID,
		AssessmentID:   c.Param("id"),
		Question: domain.Question{
			Text:          req.Text,
			Kind:          domain.QuestionKind(req.Kind),
			Options:       req.Options,
			CorrectOption: req.CorrectOption,
			Points:        req.Points,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// RemoveQuestion handles DELETE /v1/assessments/:id/questions/:question_id.
//
// @Summary      Remove a question from a draft assessment
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Assessment id"
// @Param        question_id  path      string  true  "Question id"
// @Success      200  {object}  domain.Assessment
// @Failure      404  {object}  map[string]string
// @Router       /v1/assessments/{id}/questions/{question_id} [delete]
func (h *AssessmentHandler) RemoveQuestion(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	a, err := h.assessments.RemoveQuestion(c.Request().Context(), id.OrgID, c.Param("id"), c.Param("question_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Publish handles POST /v1/assessments/:id/publish.
//
// @Summary      Publish a draft assessment
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assessment id"
// @Success      200  {object}  domain.Assessment
// @Failure      409  {object}  map[string]string
// @Router       /v1/assessments/{id}/publish [post]
func (h *AssessmentHandler) Publish(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	a, err := h.assessments.Publish(c.Request().Context(), id.OrgID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Archive handles POST /v1/assessments/:id/archive.
//
// @Summary      Archive a published assessment
// @Tags         assessments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assessment id"
// @Success      200  {object}  domain.Assessment
// @Failure      409  {object}  map[string]string
// @Router       /v1/assessments/{id}/archive [post]
func (h *AssessmentHandler) Archive(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	a, err := h.assessments.Archive(c.Request().Context(), id.OrgID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
