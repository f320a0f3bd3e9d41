package export

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk/internal/export"
	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/internal/service/patient"
	"github.com/jwalitptl/frontdesk/pkg/httputil"
)

type Handler struct {
	appointments *appointment.Service
	patients     patient.PatientService
	loc          *time.Location
	now          func() time.Time
}

func NewHandler(appointments *appointment.Service, patients patient.PatientService, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{appointments: appointments, patients: patients, loc: loc, now: time.Now}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	exports := r.Group("/export")
	{
		exports.GET("/appointments", h.AppointmentsCSV)
		exports.GET("/appointments.ics", h.AppointmentsICS)
		exports.GET("/patients", h.PatientsCSV)
	}
}

func (h *Handler) AppointmentsCSV(c *gin.Context) {
	appts, err := h.appointments.All(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteAppointmentsCSV(&buf, appts); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.attach(c, export.Filename("appointments", "csv", h.now().In(h.loc)), "text/csv", buf.Bytes())
}

func (h *Handler) AppointmentsICS(c *gin.Context) {
	appts, err := h.appointments.All(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	now := h.now()
	var buf bytes.Buffer
	if err := export.WriteAppointmentsICS(&buf, appts, h.loc, now); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.attach(c, export.Filename("appointments", "ics", now.In(h.loc)), "text/calendar", buf.Bytes())
}

func (h *Handler) PatientsCSV(c *gin.Context) {
	patients, err := h.patients.ListPatients(c.Request.Context(), &model.PatientFilters{})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePatientsCSV(&buf, patients); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.attach(c, export.Filename("patients", "csv", h.now().In(h.loc)), "text/csv", buf.Bytes())
}

func (h *Handler) attach(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType+"; charset=utf-8", body)
}
