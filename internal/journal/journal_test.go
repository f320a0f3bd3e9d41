package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/messaging"
)

// capture is a Broker that keeps the last published message.
type capture struct {
	last []byte
}

func (c *capture) Publish(ctx context.Context, channel string, message interface{}) error {
	b, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.last = b
	return nil
}

func (c *capture) Subscribe(context.Context, string) (<-chan []byte, error) { return nil, nil }
func (c *capture) Close() error                                             { return nil }

func TestHandleJournalsPublishedEvents(t *testing.T) {
	var out bytes.Buffer
	reg := prometheus.NewRegistry()
	j := New(logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: &out, JSON: true}), reg)

	broker := &capture{}
	pub := messaging.NewTopicPublisher(broker, "frontdesk.appointments")
	require.NoError(t, pub.Publish(context.Background(), appointment.EventAppointmentBooked, appointment.AppointmentEvent{
		ID:       uuid.New(),
		Date:     model.MustParseDate("2024-06-10"),
		Time:     model.Clock(10, 0),
		Duration: 30,
		Status:   model.AppointmentStatusScheduled,
	}))

	require.NoError(t, j.Handle(broker.last))
	assert.Equal(t, 1.0, testutil.ToFloat64(j.received.WithLabelValues(appointment.EventAppointmentBooked)))
	assert.Contains(t, out.String(), `"date":"2024-06-10"`)
	assert.Contains(t, out.String(), `"time":"10:00"`)

	require.NoError(t, pub.Publish(context.Background(), appointment.EventCustomSlotAdded, appointment.SlotEvent{Time: model.Clock(18, 15)}))
	require.NoError(t, j.Handle(broker.last))
	assert.Contains(t, out.String(), `"time":"18:15"`)
}

func TestHandleRejectsMalformed(t *testing.T) {
	j := New(nil, prometheus.NewRegistry())
	j.now = func() time.Time { return time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC) }

	assert.Error(t, j.Handle([]byte("not json")))
	assert.Error(t, j.Handle([]byte(`{"payload":{}}`)))
	assert.Error(t, j.Handle([]byte(`{"type":"appointment.booked","payload":{"time":"25:00"}}`)))
	assert.NoError(t, j.Handle([]byte(`{"type":"billing.paid","payload":{}}`)))
}
