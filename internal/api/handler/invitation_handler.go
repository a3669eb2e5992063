package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/assessly/assessment-api/internal/api/metrics"
	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

type InvitationHandler struct {
	invitations ports.InvitationService
}

func NewInvitationHandler(invitations ports.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// Create handles POST /v1/invitations.
//
// @Summary      Invite a candidate to an assessment
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInvitationRequest  true  "Invitation details"
// @Success      201   {object}  domain.Invitation
// @Failure      402   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/invitations [post]
func (h *InvitationHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	inv, err := h.invitations.Create(c.Request().Context(), ports.CreateInvitationInput{
		OrganizationID: id.OrgID,
		AssessmentID:   req.AssessmentID,
		CandidateEmail: req.CandidateEmail,
		CandidateName:  req.CandidateName,
	})
	if err != nil {
		return err
	}
	metrics.InvitationsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, inv)
}

// Start handles POST /v1/invitations/:token/start. Public: the opaque token
// is the candidate's credential.
//
// @Summary      Start an assessment from an invite link
// @Tags         invitations
// @Produce      json
// @Param        token  path      string  true  "Invitation token"
// @Success      200    {object}  startResponse
// @Failure      404    {object}  map[string]string
// @Failure      410    {object}  map[string]string
// @Router       /v1/invitations/{token}/start [post]
func (h *InvitationHandler) Start(c echo.Context) error {
	res, err := h.invitations.Start(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, startResponse{Invitation: res.Invitation, Assessment: res.Assessment})
}

// Submit handles POST /v1/invitations/:token/submit.
//
// @Summary      Submit answers and receive the scored result
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        token  path      string         true  "Invitation token"
// @Param        body   body      submitRequest  true  "Answers"
// @Success      200    {object}  domain.Submission
// @Failure      404    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      410    {object}  map[string]string
// @Router       /v1/invitations/{token}/submit [post]
func (h *InvitationHandler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.Answer{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			Text:           a.Text,
		})
	}

	sub, err := h.invitations.Submit(c.Request().Context(), c.Param("token"), answers)
	if err != nil {
		return err
	}
	metrics.SubmissionsScoredTotal.WithLabelValues(strconv.FormatBool(sub.NeedsReview)).Inc()

	return c.JSON(http.StatusOK, sub)
}

// Result handles GET /v1/invitations/:id/result.
//
// @Summary      Fetch the scored result of a completed invitation
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invitation id"
// @Success      200  {object}  domain.Submission
// @Failure      404  {object}  map[string]string
// @Router       /v1/invitations/{id}/result [get]
func (h *InvitationHandler) Result(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	sub, err := h.invitations.Result(c.Request().Context(), id.OrgID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

// Revoke handles DELETE /v1/invitations/:id.
//
// @Summary      Revoke a pending invitation
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Invitation id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/invitations/{id} [delete]
func (h *InvitationHandler) Revoke(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.invitations.Revoke(c.Request().Context(), id.OrgID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
