package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"skihud/internal/repository"
	"skihud/internal/services"
)

// RiderHandler serves the write side: registration and telemetry updates.
type RiderHandler struct {
	registrar *services.RegistrarService
	telemetry *services.TelemetryService
}

func NewRiderHandler(registrar *services.RegistrarService, telemetry *services.TelemetryService) *RiderHandler {
	return &RiderHandler{
		registrar: registrar,
		telemetry: telemetry,
	}
}

type RegisterRequest struct {
	Name string `json:"name"`
}

// Register handles POST /register.
func (h *RiderHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rider, err := h.registrar.Register(c.Request.Context(), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": rider.ID,
		"name":    rider.Name,
		"active":  rider.Active,
	})
}

// UpdateRequest is the sparse telemetry payload. Every telemetry field is a
// pointer: nil means the client did not report it. The g-force value is
// accepted under both "g" (wire name used by the devices) and "g_force".
type UpdateRequest struct {
	UserID string  `json:"user_id"`
	Active *Bool   `json:"active"`
	Lat    *Number `json:"lat"`
	Lon    *Number `json:"lon"`
	Alt    *Number `json:"alt"`
	Speed  *Number `json:"speed"`
	G      *Number `json:"g"`
	GForce *Number `json:"g_force"`
	Trail  *string `json:"trail"`
}

// Update handles POST /update.
func (h *RiderHandler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g := req.G
	if g == nil {
		g = req.GForce
	}

	rider, err := h.telemetry.ApplyUpdate(c.Request.Context(), req.UserID, services.UpdateFields{
		Active: req.Active.boolPtr(),
		Lat:    req.Lat.floatPtr(),
		Lon:    req.Lon.floatPtr(),
		Alt:    req.Alt.floatPtr(),
		Speed:  req.Speed.floatPtr(),
		GForce: g.floatPtr(),
		Trail:  req.Trail,
	})
	switch {
	case errors.Is(err, services.ErrMissingUserID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
	case errors.Is(err, repository.ErrRiderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user_id not found", "user_id": req.UserID})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, rider)
	}
}
