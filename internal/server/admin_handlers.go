package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medverse/portal/internal/backend"
	"github.com/medverse/portal/internal/guard"
	"github.com/medverse/portal/internal/models"
)

func (s *Server) adminListUsers(c *gin.Context) {
	users, err := s.client.AdminUsers(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) adminGetUser(c *gin.Context) {
	user, err := s.client.AdminGetUser(c.Request.Context(), guard.Scope(c), c.Param("id"))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) adminUpdateUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.client.AdminUpdateUser(c.Request.Context(), guard.Scope(c), c.Param("id"), &user)
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	if err := s.client.AdminDeleteUser(c.Request.Context(), guard.Scope(c), c.Param("id")); err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) adminListAppointments(c *gin.Context) {
	appointments, err := s.client.AdminAppointments(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (s *Server) adminCancelAppointment(c *gin.Context) {
	if err := s.client.AdminCancelAppointment(c.Request.Context(), guard.Scope(c), c.Param("id")); err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func (s *Server) adminRescheduleAppointment(c *gin.Context) {
	var req backend.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Date == "" || req.Time == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and time are required"})
		return
	}

	if err := s.client.AdminRescheduleAppointment(c.Request.Context(), guard.Scope(c), c.Param("id"), req); err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rescheduled": true})
}

// adminExportAppointments relays the backend's CSV export, preserving the
// content type so the browser downloads it.
func (s *Server) adminExportAppointments(c *gin.Context) {
	data, contentType, err := s.client.AdminExportAppointments(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	if contentType == "" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", `attachment; filename="appointments.csv"`)
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) adminListAudits(c *gin.Context) {
	audits, err := s.client.AdminAudits(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, audits)
}

func (s *Server) adminListFeedback(c *gin.Context) {
	feedback, err := s.client.AdminFeedback(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}
