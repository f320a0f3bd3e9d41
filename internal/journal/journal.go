// Package journal records the appointment events published by the API.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/messaging"
)

type Journal struct {
	logger   *logger.Logger
	received *prometheus.CounterVec
	lag      prometheus.Histogram
	now      func() time.Time
}

func New(log *logger.Logger, reg prometheus.Registerer) *Journal {
	if log == nil {
		log = logger.Nop()
	}
	factory := promauto.With(reg)
	return &Journal{
		logger: log.Component("journal"),
		received: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "journal",
			Name:      "events_total",
			Help:      "Appointment events received by type",
		}, []string{"event_type"}),
		lag: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "journal",
			Name:      "event_lag_seconds",
			Help:      "Time between publishing and journaling an event",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		now: time.Now,
	}
}

// Handle is a messaging handler. Malformed envelopes are returned as errors
// so the adapter logs and skips them.
func (j *Journal) Handle(raw []byte) error {
	msg, err := messaging.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if msg.Type == "" {
		return fmt.Errorf("event has no type")
	}

	j.received.WithLabelValues(msg.Type).Inc()
	if !msg.OccurredAt.IsZero() {
		j.lag.Observe(j.now().Sub(msg.OccurredAt).Seconds())
	}

	switch {
	case strings.HasPrefix(msg.Type, "appointment."):
		var evt appointment.AppointmentEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
		j.logger.Info("appointment event",
			"event_type", msg.Type,
			"id", evt.ID.String(),
			"date", evt.Date.String(),
			"time", evt.Time.String(),
			"duration", evt.Duration,
			"status", string(evt.Status))
	case strings.HasPrefix(msg.Type, "slot."):
		var evt appointment.SlotEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s payload: %w", msg.Type, err)
		}
		j.logger.Info("slot event", "event_type", msg.Type, "time", evt.Time.String())
	default:
		j.logger.Warn("unknown event type", "event_type", msg.Type)
	}
	return nil
}
