package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skihud/internal/services"
)

// PresenceHandler serves the read-only snapshot queries.
type PresenceHandler struct {
	presence *services.PresenceService
}

func NewPresenceHandler(presence *services.PresenceService) *PresenceHandler {
	return &PresenceHandler{
		presence: presence,
	}
}

// Active handles GET /active.
func (h *PresenceHandler) Active(c *gin.Context) {
	riders, err := h.presence.ActiveRiders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, riders)
}

// All handles GET /all.
func (h *PresenceHandler) All(c *gin.Context) {
	riders, err := h.presence.AllRiders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, riders)
}

// Records handles GET /records. An optional ?limit= overrides the default
// leaderboard size; anything unparseable falls back to the default.
func (h *PresenceHandler) Records(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.presence.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
