package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/medverse/portal/internal/models"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
}

// Login authenticates against the backend and normalizes whichever response
// shape it answers with.
func (c *Client) Login(ctx context.Context, scope, email, password string) (string, *models.User, error) {
	var raw json.RawMessage
	if err := c.doAnon(ctx, scope, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &raw); err != nil {
		return "", nil, err
	}
	return NormalizeLogin(raw)
}

// Signup registers a new account. The backend answers in the same shapes as
// login.
func (c *Client) Signup(ctx context.Context, scope string, req SignupRequest) (string, *models.User, error) {
	var raw json.RawMessage
	if err := c.doAnon(ctx, scope, http.MethodPost, "/auth/signup", req, &raw); err != nil {
		return "", nil, err
	}
	return NormalizeLogin(raw)
}

// Appointment is a booked consultation as the backend reports it.
type Appointment struct {
	ID         string `json:"id"`
	PatientID  string `json:"patientId,omitempty"`
	DoctorName string `json:"doctorName"`
	Hospital   string `json:"hospital,omitempty"`
	Department string `json:"department,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

// BookAppointmentRequest is the booking form payload.
type BookAppointmentRequest struct {
	DoctorName string `json:"doctorName"`
	Hospital   string `json:"hospital,omitempty"`
	Department string `json:"department,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes,omitempty"`
}

// Appointments lists the visitor's appointments.
func (c *Client) Appointments(ctx context.Context, scope string) ([]Appointment, error) {
	var appointments []Appointment
	if err := c.do(ctx, scope, http.MethodGet, "/appointments", nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// BookAppointment books a consultation.
func (c *Client) BookAppointment(ctx context.Context, scope string, req BookAppointmentRequest) (*Appointment, error) {
	var appointment Appointment
	if err := c.do(ctx, scope, http.MethodPost, "/appointments", req, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// MedicalRecord is one entry of the patient's history.
type MedicalRecord struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Type        string `json:"type"` // consultation, lab-test, prescription
	Description string `json:"description"`
	DoctorName  string `json:"doctorName,omitempty"`
	Attachment  string `json:"attachment,omitempty"`
}

// MedicalRecords lists the visitor's medical records (lab tests included).
func (c *Client) MedicalRecords(ctx context.Context, scope string) ([]MedicalRecord, error) {
	var records []MedicalRecord
	if err := c.do(ctx, scope, http.MethodGet, "/medical-records", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// PrivilegeCard is the portal's loyalty card.
type PrivilegeCard struct {
	ID         string `json:"id"`
	CardNumber string `json:"cardNumber"`
	Tier       string `json:"tier"`
	Status     string `json:"status"` // pending, active, rejected
	IssuedAt   string `json:"issuedAt,omitempty"`
}

// PrivilegeCardApplication is the application form payload.
type PrivilegeCardApplication struct {
	Tier    string `json:"tier"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// GetPrivilegeCard fetches the visitor's card, if any.
func (c *Client) GetPrivilegeCard(ctx context.Context, scope string) (*PrivilegeCard, error) {
	var card PrivilegeCard
	if err := c.do(ctx, scope, http.MethodGet, "/privilege-card", nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// ApplyPrivilegeCard submits a card application.
func (c *Client) ApplyPrivilegeCard(ctx context.Context, scope string, req PrivilegeCardApplication) (*PrivilegeCard, error) {
	var card PrivilegeCard
	if err := c.do(ctx, scope, http.MethodPost, "/privilege-card", req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Hospital is a directory entry.
type Hospital struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Services string `json:"services,omitempty"`
}

// Hospitals lists the hospital directory, optionally filtered by city.
func (c *Client) Hospitals(ctx context.Context, scope, city string) ([]Hospital, error) {
	path := "/hospitals"
	if city != "" {
		path += "?city=" + url.QueryEscape(city)
	}
	var hospitals []Hospital
	if err := c.do(ctx, scope, http.MethodGet, path, nil, &hospitals); err != nil {
		return nil, err
	}
	return hospitals, nil
}

// Doctor is a directory entry.
type Doctor struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	Hospital        string  `json:"hospital,omitempty"`
	ConsultationFee float64 `json:"consultationFee,omitempty"`
	Qualifications  string  `json:"qualifications,omitempty"`
}

// Doctors lists the doctor directory, optionally filtered by specialization.
func (c *Client) Doctors(ctx context.Context, scope, specialization string) ([]Doctor, error) {
	path := "/doctors"
	if specialization != "" {
		path += "?specialization=" + url.QueryEscape(specialization)
	}
	var doctors []Doctor
	if err := c.do(ctx, scope, http.MethodGet, path, nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// AvailabilitySlot is one bookable window in a doctor's week.
type AvailabilitySlot struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// DoctorAvailability fetches the logged-in doctor's availability.
func (c *Client) DoctorAvailability(ctx context.Context, scope string) ([]AvailabilitySlot, error) {
	var slots []AvailabilitySlot
	if err := c.do(ctx, scope, http.MethodGet, "/doctor/availability", nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// SetDoctorAvailability replaces the logged-in doctor's availability.
func (c *Client) SetDoctorAvailability(ctx context.Context, scope string, slots []AvailabilitySlot) error {
	return c.do(ctx, scope, http.MethodPut, "/doctor/availability", slots, nil)
}

// DoctorAppointmentsPage is one page of a doctor's schedule.
type DoctorAppointmentsPage struct {
	Appointments []Appointment `json:"appointments"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
}

// DoctorAppointments fetches one page of the logged-in doctor's schedule.
func (c *Client) DoctorAppointments(ctx context.Context, scope string, page int) (*DoctorAppointmentsPage, error) {
	var result DoctorAppointmentsPage
	path := fmt.Sprintf("/doctor/appointments?page=%d", page)
	if err := c.do(ctx, scope, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DoctorProfile fetches the logged-in doctor's profile.
func (c *Client) DoctorProfile(ctx context.Context, scope string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, scope, http.MethodGet, "/doctor/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateDoctorProfile updates the logged-in doctor's profile and returns the
// stored result.
func (c *Client) UpdateDoctorProfile(ctx context.Context, scope string, profile *models.User) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, scope, http.MethodPut, "/doctor/profile", profile, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterDoctor completes a doctor account's registration.
func (c *Client) RegisterDoctor(ctx context.Context, scope string, profile *models.User) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, scope, http.MethodPost, "/doctor/register", profile, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminUsers lists all portal users (admin only).
func (c *Client) AdminUsers(ctx context.Context, scope string) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, scope, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminGetUser fetches one user (admin only).
func (c *Client) AdminGetUser(ctx context.Context, scope, id string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, scope, http.MethodGet, "/admin/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminUpdateUser updates one user (admin only).
func (c *Client) AdminUpdateUser(ctx context.Context, scope, id string, user *models.User) (*models.User, error) {
	var updated models.User
	if err := c.do(ctx, scope, http.MethodPut, "/admin/users/"+url.PathEscape(id), user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AdminDeleteUser removes one user (admin only).
func (c *Client) AdminDeleteUser(ctx context.Context, scope, id string) error {
	return c.do(ctx, scope, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil)
}

// AdminAppointments lists all appointments (admin only).
func (c *Client) AdminAppointments(ctx context.Context, scope string) ([]Appointment, error) {
	var appointments []Appointment
	if err := c.do(ctx, scope, http.MethodGet, "/admin/appointments", nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// AdminCancelAppointment cancels an appointment (admin only).
func (c *Client) AdminCancelAppointment(ctx context.Context, scope, id string) error {
	return c.do(ctx, scope, http.MethodPatch, "/admin/appointments/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// RescheduleRequest carries the new slot for an appointment.
type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// AdminRescheduleAppointment moves an appointment (admin only).
func (c *Client) AdminRescheduleAppointment(ctx context.Context, scope, id string, req RescheduleRequest) error {
	return c.do(ctx, scope, http.MethodPatch, "/admin/appointments/"+url.PathEscape(id)+"/reschedule", req, nil)
}

// AdminExportAppointments downloads the appointments export (CSV) for
// relaying to the caller.
func (c *Client) AdminExportAppointments(ctx context.Context, scope string) ([]byte, string, error) {
	return c.raw(ctx, scope, http.MethodGet, "/admin/appointments/export")
}

// AuditEntry is one row of the admin audit trail.
type AuditEntry struct {
	ID        string `json:"id"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Timestamp string `json:"timestamp"`
}

// AdminAudits lists the audit trail (admin only).
func (c *Client) AdminAudits(ctx context.Context, scope string) ([]AuditEntry, error) {
	var audits []AuditEntry
	if err := c.do(ctx, scope, http.MethodGet, "/admin/audits", nil, &audits); err != nil {
		return nil, err
	}
	return audits, nil
}

// FeedbackEntry is one row of patient feedback.
type FeedbackEntry struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Rating  int    `json:"rating,omitempty"`
}

// AdminFeedback lists patient feedback (admin only).
func (c *Client) AdminFeedback(ctx context.Context, scope string) ([]FeedbackEntry, error) {
	var feedback []FeedbackEntry
	if err := c.do(ctx, scope, http.MethodGet, "/admin/feedback", nil, &feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}
