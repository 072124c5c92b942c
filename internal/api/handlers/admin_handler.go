package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skihud/internal/services"
)

// AdminHandler serves the destructive development endpoints. Reset wipes the
// whole store, so it stays behind a capability flag rather than shipping
// open like the unauthenticated endpoint it replaces.
type AdminHandler struct {
	admin   *services.AdminService
	resetOn bool
}

func NewAdminHandler(admin *services.AdminService, resetEnabled bool) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		resetOn: resetEnabled,
	}
}

// Reset handles GET /reset.
func (h *AdminHandler) Reset(c *gin.Context) {
	if !h.resetOn {
		c.JSON(http.StatusForbidden, gin.H{"error": "reset disabled"})
		return
	}

	if err := h.admin.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "database cleared"})
}
