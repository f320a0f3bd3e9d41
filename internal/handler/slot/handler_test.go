package slot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/internal/middleware"
	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository/memory"
	"github.com/jwalitptl/frontdesk/internal/scheduling"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*gin.Engine, *appointment.Service, *model.Patient) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	patient := &model.Patient{SerialNumber: "P-002", Name: "Ravi", Phone: "555-0102"}
	svc := appointment.NewService(memory.NewAppointmentRepository(), memory.NewPatientRepository(patient),
		memory.NewSlotRepository(), appointment.Options{})

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc, patient
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestDaySlotsMarksBlocked(t *testing.T) {
	r, svc, p := setup(t)
	_, err := svc.Book(context.Background(), appointment.BookRequest{
		PatientID: p.ID, Date: model.MustParseDate("2024-06-10"), Time: model.Clock(9, 15), Duration: 45,
	})
	require.NoError(t, err)

	code, env := do(t, r, http.MethodGet, "/api/v1/slots?date=2024-06-10", "")
	require.Equal(t, http.StatusOK, code)

	var day appointment.DaySchedule
	require.NoError(t, json.Unmarshal(env.Data, &day))
	require.Len(t, day.Slots, 18)
	assert.False(t, day.Slots[0].Blocked)
	assert.False(t, day.Slots[1].Blocked)
	assert.Equal(t, []model.TimeOfDay{model.Clock(9, 15), model.Clock(9, 45)}, day.OffGrid)

	code, env = do(t, r, http.MethodGet, "/api/v1/slots/available?date=2024-06-10", "")
	require.Equal(t, http.StatusOK, code)
	var free []scheduling.TimeSlot
	require.NoError(t, json.Unmarshal(env.Data, &free))
	assert.Len(t, free, 18)

	code, _ = do(t, r, http.MethodGet, "/api/v1/slots", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCustomSlotLifecycle(t *testing.T) {
	r, _, _ := setup(t)

	code, env := do(t, r, http.MethodGet, "/api/v1/slots/custom", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = do(t, r, http.MethodPost, "/api/v1/slots/custom", `{"time":"18:15"}`)
	require.Equal(t, http.StatusCreated, code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/slots/custom", `{"time":"18:15"}`)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = do(t, r, http.MethodPost, "/api/v1/slots/custom", `{"time":"09:00"}`)
	assert.Equal(t, http.StatusConflict, code)
	code, _ = do(t, r, http.MethodPost, "/api/v1/slots/custom", `{"time":"6pm"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, r, http.MethodGet, "/api/v1/slots?date=2024-06-10", "")
	require.Equal(t, http.StatusOK, code)
	var day appointment.DaySchedule
	require.NoError(t, json.Unmarshal(env.Data, &day))
	require.Len(t, day.Slots, 19)
	assert.Equal(t, scheduling.SlotOriginCustom, day.Slots[18].Origin)

	code, _ = do(t, r, http.MethodDelete, "/api/v1/slots/custom/18:15", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, r, http.MethodDelete, "/api/v1/slots/custom/18:15", "")
	assert.Equal(t, http.StatusNotFound, code)
}
