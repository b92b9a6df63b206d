package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medverse/portal/internal/backend"
	"github.com/medverse/portal/internal/guard"
	"github.com/medverse/portal/internal/models"
)

func (s *Server) getDoctorAvailability(c *gin.Context) {
	slots, err := s.client.DoctorAvailability(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (s *Server) setDoctorAvailability(c *gin.Context) {
	var slots []backend.AvailabilitySlot
	if err := c.ShouldBindJSON(&slots); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.client.SetDoctorAvailability(c.Request.Context(), guard.Scope(c), slots); err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (s *Server) listDoctorAppointments(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := s.client.DoctorAppointments(c.Request.Context(), guard.Scope(c), page)
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getDoctorProfile(c *gin.Context) {
	profile, err := s.client.DoctorProfile(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// updateDoctorProfile relays the edit and then syncs the stored session user
// so headers and guards see the fresh profile immediately.
func (s *Server) updateDoctorProfile(c *gin.Context) {
	var profile models.User
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scope := guard.Scope(c)
	updated, err := s.client.UpdateDoctorProfile(c.Request.Context(), scope, &profile)
	if err != nil {
		s.relayBackendError(c, err)
		return
	}

	if err := s.provider.UpdateUser(c.Request.Context(), scope, updated); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to sync session user after profile update")
	}

	c.JSON(http.StatusOK, updated)
}

// registerDoctor completes doctor onboarding and syncs the session user, so
// isRegistered flips without a re-login.
func (s *Server) registerDoctor(c *gin.Context) {
	var profile models.User
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scope := guard.Scope(c)
	registered, err := s.client.RegisterDoctor(c.Request.Context(), scope, &profile)
	if err != nil {
		s.relayBackendError(c, err)
		return
	}

	if err := s.provider.UpdateUser(c.Request.Context(), scope, registered); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to sync session user after registration")
	}

	c.JSON(http.StatusCreated, registered)
}
