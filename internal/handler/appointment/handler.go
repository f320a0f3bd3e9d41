package appointment

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability", h.CheckAvailability)

	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.POST("/:id/complete", h.CompleteAppointment)
		appointments.POST("/:id/reschedule", h.RescheduleAppointment)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	// Binding already checked the formats.
	patientID := uuid.MustParse(req.PatientID)
	date := model.MustParseDate(req.Date)
	at := model.MustParseTimeOfDay(req.Time)
	duration := req.Duration
	if duration == 0 {
		duration = model.DefaultDurationMinutes
	}

	appt, err := h.service.Book(c.Request.Context(), appointment.BookRequest{
		PatientID: patientID,
		Date:      date,
		Time:      at,
		Duration:  duration,
		Notes:     req.Notes,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondCreated(c, appt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	appt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appt)
}

// ListAppointments serves ?date= (one day), ?week= (the Sunday-based week
// containing that day) or, with neither, every appointment.
func (h *Handler) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("week"); raw != "" {
		ref, ok := queryDate(c, "week")
		if !ok {
			return
		}
		week, err := h.service.ListForWeek(ctx, ref)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, week)
		return
	}

	if raw := c.Query("date"); raw != "" {
		date, ok := queryDate(c, "date")
		if !ok {
			return
		}
		appts, err := h.service.ListForDate(ctx, date)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, appts)
		return
	}

	appts, err := h.service.All(ctx)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appts)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	update, err := req.ToUpdate()
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	appt, err := h.service.Update(c.Request.Context(), id, update)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	appt, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	appt, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	var req model.RescheduleRequest
	if !httputil.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.Reschedule(c.Request.Context(), id,
		model.MustParseDate(req.Date), model.MustParseTimeOfDay(req.Time))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id})
}

type availability struct {
	Date      model.Date      `json:"date"`
	Time      model.TimeOfDay `json:"time"`
	Duration  int             `json:"duration"`
	Available bool            `json:"available"`
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	at, err := model.ParseTimeOfDay(c.Query("time"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}
	duration := model.DefaultDurationMinutes
	if raw := c.Query("duration"); raw != "" {
		if duration, err = strconv.Atoi(raw); err != nil {
			httputil.RespondWithError(c, errors.NewValidation("duration must be a number of minutes"))
			return
		}
	}

	available, err := h.service.CheckAvailability(c.Request.Context(), date, at, duration)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, availability{Date: date, Time: at, Duration: duration, Available: available})
}

func appointmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation("invalid appointment ID"))
		return uuid.Nil, false
	}
	return id, true
}

func queryDate(c *gin.Context, key string) (model.Date, bool) {
	d, err := model.ParseDate(c.Query(key))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return model.Date{}, false
	}
	return d, true
}
