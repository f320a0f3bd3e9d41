package slot

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/httputil"
)

// Handler serves the day grid and the operator-managed custom slots.
type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	slots := r.Group("/slots")
	{
		slots.GET("", h.DaySlots)
		slots.GET("/available", h.AvailableSlots)
		slots.GET("/custom", h.ListCustomSlots)
		slots.POST("/custom", h.AddCustomSlot)
		slots.DELETE("/custom/:time", h.RemoveCustomSlot)
	}
}

func (h *Handler) DaySlots(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}

	day, err := h.service.DaySlots(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, day)
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) ListCustomSlots(c *gin.Context) {
	slots, err := h.service.CustomSlots(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if slots == nil {
		slots = []model.TimeOfDay{}
	}

	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) AddCustomSlot(c *gin.Context) {
	var req model.CustomSlotRequest
	if !httputil.BindJSON(c, &req) {
		return
	}
	at := model.MustParseTimeOfDay(req.Time)

	if err := h.service.AddCustomSlot(c.Request.Context(), at); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondCreated(c, gin.H{"time": at})
}

func (h *Handler) RemoveCustomSlot(c *gin.Context) {
	at, err := model.ParseTimeOfDay(c.Param("time"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return
	}

	if err := h.service.RemoveCustomSlot(c.Request.Context(), at); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"time": at})
}

func queryDate(c *gin.Context) (model.Date, bool) {
	d, err := model.ParseDate(c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, errors.NewValidation(err.Error()))
		return model.Date{}, false
	}
	return d, true
}
