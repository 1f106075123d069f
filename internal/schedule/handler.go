package schedule

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/auth"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreateSlot godoc
// @Summary      Publish an availability slot
// @Tags         schedule
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSlotRequest  true  "Slot window"
// @Success      201      {object}  Slot
// @Failure      400      {object}  gin.H
// @Router       /slots [post]
func (h *Handler) CreateSlot(c *gin.Context) {
	instructorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be RFC3339"})
		return
	}

	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}
	if start.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot create a slot in the past"})
		return
	}

	slot, err := h.repo.CreateSlot(c.Request.Context(), instructorID, req.StartTime, req.EndTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create slot"})
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// ListInstructorSlots godoc
// @Summary      List an instructor's open future slots
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        instructorID  path      int  true  "Instructor ID"
// @Success      200           {array}   Slot
// @Router       /instructors/{instructorID}/slots [get]
func (h *Handler) ListInstructorSlots(c *gin.Context) {
	instructorID, err := strconv.Atoi(c.Param("instructorID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid instructor id"})
		return
	}

	onlyOpen := c.DefaultQuery("only_open", "true") != "false"

	slots, err := h.repo.GetByInstructorID(c.Request.Context(), instructorID, onlyOpen)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}

// ListMySlots returns the authenticated instructor's own calendar.
func (h *Handler) ListMySlots(c *gin.Context) {
	instructorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	slots, err := h.repo.GetByInstructorID(c.Request.Context(), instructorID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}
