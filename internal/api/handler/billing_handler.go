package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assessly/assessment-api/internal/api/metrics"
	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
)

// maxWebhookBody caps the webhook payload read. Stripe events are a few KB.
const maxWebhookBody = 1 << 20

type selectPlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=free basic professional enterprise"`
}

type BillingHandler struct {
	billing ports.BillingService
}

func NewBillingHandler(billing ports.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// Plans handles GET /v1/billing/plans.
//
// @Summary      List the plan catalog
// @Tags         billing
// @Produce      json
// @Success      200  {array}  domain.Plan
// @Router       /v1/billing/plans [get]
func (h *BillingHandler) Plans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.billing.Plans(c.Request().Context()))
}

// Subscription handles GET /v1/billing/subscription.
//
// @Summary      Get the organization's subscription
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Subscription
// @Router       /v1/billing/subscription [get]
func (h *BillingHandler) Subscription(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	sub, err := h.billing.Subscription(c.Request().Context(), id.OrgID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

// Checkout handles POST /v1/billing/checkout. Free plans apply immediately,
// enterprise returns a contact-sales result, self-serve plans return a
// provider checkout URL.
//
// @Summary      Select a plan
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      selectPlanRequest  true  "Plan selection"
// @Success      200   {object}  ports.CheckoutResult
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/billing/checkout [post]
func (h *BillingHandler) Checkout(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req selectPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.billing.SelectPlan(c.Request().Context(), id.OrgID, id.Email, domain.PlanID(req.Plan))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Cancel handles POST /v1/billing/cancel.
//
// @Summary      Cancel the active subscription at period end
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/billing/cancel [post]
func (h *BillingHandler) Cancel(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.billing.Cancel(c.Request().Context(), id.OrgID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cancellation scheduled"})
}

// Webhook handles POST /webhooks/stripe. The raw body and signature header
// are passed through untouched; verification happens in the provider.
//
// @Summary      Stripe webhook receiver
// @Tags         billing
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /webhooks/stripe [post]
func (h *BillingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		metrics.WebhookErrorsTotal.WithLabelValues("read").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read payload")
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		metrics.WebhookErrorsTotal.WithLabelValues("reconcile").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "webhook rejected")
	}
	metrics.WebhookEventsTotal.Inc()

	return c.JSON(http.StatusOK, map[string]string{"received": "true"})
}
