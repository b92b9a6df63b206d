package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medverse/portal/internal/backend"
	"github.com/medverse/portal/internal/guard"
)

// The page handlers are deliberately thin: every one of them relays between
// the visitor and the backend API. Anything that looks like business logic
// belongs on the other side of that API.

func (s *Server) listHospitals(c *gin.Context) {
	hospitals, err := s.client.Hospitals(c.Request.Context(), guard.Scope(c), c.Query("city"))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, hospitals)
}

func (s *Server) listDoctors(c *gin.Context) {
	doctors, err := s.client.Doctors(c.Request.Context(), guard.Scope(c), c.Query("specialization"))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (s *Server) listAppointments(c *gin.Context) {
	appointments, err := s.client.Appointments(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (s *Server) bookAppointment(c *gin.Context) {
	var req backend.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DoctorName == "" || req.Date == "" || req.Time == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "doctorName, date and time are required"})
		return
	}

	appointment, err := s.client.BookAppointment(c.Request.Context(), guard.Scope(c), req)
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (s *Server) listMedicalRecords(c *gin.Context) {
	records, err := s.client.MedicalRecords(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) getPrivilegeCard(c *gin.Context) {
	card, err := s.client.GetPrivilegeCard(c.Request.Context(), guard.Scope(c))
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) applyPrivilegeCard(c *gin.Context) {
	var req backend.PrivilegeCardApplication
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := s.client.ApplyPrivilegeCard(c.Request.Context(), guard.Scope(c), req)
	if err != nil {
		s.relayBackendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

// Dashboard landing pages. Each answers with the session context the page
// shell needs; the page's data comes from the dedicated endpoints above.

func (s *Server) dashboardResponse(c *gin.Context, page string) {
	sess := guard.CurrentSession(c)
	resp := SessionResponse{
		LoggedIn:   sess.LoggedIn(),
		ActiveRole: sess.ActiveRole,
	}
	if sess.User != nil {
		resp.User = sess.User
		resp.Roles = sess.User.EffectiveRoles()
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "session": resp})
}

func (s *Server) patientDashboard(c *gin.Context) {
	s.dashboardResponse(c, "dashboard/patient")
}

func (s *Server) doctorDashboard(c *gin.Context) {
	s.dashboardResponse(c, "dashboard/doctor")
}

func (s *Server) staffDashboard(c *gin.Context) {
	s.dashboardResponse(c, "dashboard/staff")
}

func (s *Server) adminDashboard(c *gin.Context) {
	s.dashboardResponse(c, "dashboard/admin")
}
