package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"classflow/internal/api"
	"classflow/internal/auth"
	"classflow/internal/logger"
	"classflow/internal/metrics"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type Plan struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Allotment  *int     `json:"allotment,omitempty"`
	ValidDays  int      `json:"valid_days"`
	PriceCents int64    `json:"price_cents"`
}

func getPlans() []Plan {
	group8 := 8
	group12 := 12
	personal4 := 4
	dayPass := 1

	return []Plan{
		{Code: "group_8", Name: "Group 8", Category: CategoryGroup, Allotment: &group8, ValidDays: 30, PriceCents: 28000},
		{Code: "group_12", Name: "Group 12", Category: CategoryGroup, Allotment: &group12, ValidDays: 30, PriceCents: 38000},
		{Code: "group_unlimited", Name: "Group Unlimited", Category: CategoryGroup, Allotment: nil, ValidDays: 30, PriceCents: 55000},
		{Code: "day_pass", Name: "Day Pass", Category: CategoryGroup, Allotment: &dayPass, ValidDays: 1, PriceCents: 5000},
		{Code: "personal_4", Name: "Personal 4", Category: CategoryPersonal, Allotment: &personal4, ValidDays: 30, PriceCents: 72000},
		{Code: "personal_duo_4", Name: "Personal Duo 4", Category: CategoryPersonalDuo, Allotment: &personal4, ValidDays: 30, PriceCents: 48000},
		{Code: "personal_trio_4", Name: "Personal Trio 4", Category: CategoryPersonalTrio, Allotment: &personal4, ValidDays: 30, PriceCents: 36000},
	}
}

func findPlan(code string) (Plan, error) {
	for _, p := range getPlans() {
		if p.Code == code {
			return p, nil
		}
	}
	return Plan{}, errors.New("unknown plan code")
}

type CreateSubscriptionRequest struct {
	Plan      string `json:"plan" binding:"required"`
	Equipment string `json:"equipment" binding:"required,oneof=mat reformer both"`
}

// @Summary      Create a subscription for a member
// @Description  Admin-only: assign a plan to a member. Payment is handled at the front desk, outside this API.
// @Tags         admin,subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        memberID path int true "Member ID"
// @Param        request body subscription.CreateSubscriptionRequest true "Plan assignment"
// @Success      201 {object} subscription.Subscription
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/members/{memberID}/subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid member ID"})
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	plan, err := findPlan(req.Plan)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown plan code"})
		return
	}

	sub, err := h.repo.CreateSubscription(c.Request.Context(), memberID, plan.Category, Equipment(req.Equipment), plan.Allotment, plan.ValidDays)
	if err != nil {
		logger.Errorf("Failed to create subscription for member %d: %v", memberID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create subscription"})
		return
	}

	logger.Info("Subscription created", "plan", plan.Code, "member_id", memberID)
	metrics.RecordSubscription(plan.Code)

	c.JSON(http.StatusCreated, sub)
}

// @Summary      List my subscriptions
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} subscription.Subscription
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /subscriptions [get]
func (h *Handler) ListMy(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	subs, err := h.repo.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

// @Summary      List available plans
// @Tags         subscriptions
// @Produce      json
// @Success      200 {array} subscription.Plan
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, getPlans())
}

// @Summary      Deactivate a subscription
// @Tags         admin,subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        subscriptionID path int true "Subscription ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/subscriptions/{subscriptionID}/deactivate [post]
func (h *Handler) Deactivate(c *gin.Context) {
	subID, err := strconv.Atoi(c.Param("subscriptionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid subscription ID"})
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), subID); err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Subscription not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to deactivate subscription"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Subscription deactivated"})
}
