package classroom

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/varunbhtt21/tutorly-platform-sub001/internal/api"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/auth"
	"github.com/varunbhtt21/tutorly-platform-sub001/internal/session"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Join godoc
// @Summary      Get classroom join info
// @Description  Returns the room URL and a meeting token for a session participant.
// @Tags         classroom
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path  int  true  "Session ID"
// @Success      200  {object}  JoinInfo
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /sessions/{sessionID}/classroom [get]
func (h *Handler) Join(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid session id"})
		return
	}

	info, err := h.service.GetJoinInfo(c.Request.Context(), sessionID, userID)
	switch {
	case errors.Is(err, ErrNotParticipant):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not a participant of this session"})
		return
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "classroom not found"})
		return
	case errors.Is(err, ErrRoomNotOpen):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "classroom is not open"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to join classroom"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// End closes the room; only the session's instructor may call it.
func (h *Handler) End(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid session id"})
		return
	}

	err = h.service.EndRoom(c.Request.Context(), sessionID)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "classroom not found"})
		return
	case errors.Is(err, ErrInvalidRoomTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "classroom already closed"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to end classroom"})
		return
	}

	c.JSON(http.StatusOK, api.Result{Success: true, Message: "classroom ended"})
}
