package classes

import (
	"net/http"
	"strconv"
	"strings"

	"classflow/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Create a class slot
// @Description  Admin-only: schedule a new class. Start time is studio-local civil time ("2006-01-02 15:04").
// @Tags         admin,classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body classes.CreateClassRequest true "Class payload"
// @Success      201 {object} classes.ClassSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondWithBindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	slot, err := h.service.CreateClass(ctx, req)
	if err != nil {
		switch err {
		case ErrClassInvalid:
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class data"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create class"})
		}
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// @Summary      List classes
// @Description  Returns active classes with availability and waitlist length. The member view only includes upcoming classes.
// @Tags         classes,admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} classes.ClassSlotWithAvailability
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes [get]
// @Router       /admin/classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	ctx := c.Request.Context()
	onlyFuture := !strings.Contains(c.Request.URL.Path, "/admin/")
	slots, err := h.service.ListClasses(ctx, onlyFuture)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch classes"})
		return
	}

	c.JSON(http.StatusOK, slots)
}

// @Summary      Get a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} classes.ClassSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID} [get]
func (h *Handler) GetClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	slot, err := h.service.GetClassByID(c.Request.Context(), classID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
		return
	}

	c.JSON(http.StatusOK, slot)
}

// @Summary      Cancel a class
// @Description  Admin-only: mark a class slot cancelled.
// @Tags         admin,classes
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes/{classID}/cancel [post]
func (h *Handler) CancelClass(c *gin.Context) {
	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID"})
		return
	}

	if err := h.service.CancelClass(c.Request.Context(), classID); err != nil {
		switch err {
		case ErrClassNotFound:
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Class not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel class"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Class cancelled"})
}
