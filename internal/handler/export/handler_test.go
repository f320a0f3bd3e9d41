package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository/memory"
	"github.com/jwalitptl/frontdesk/internal/service/appointment"
	"github.com/jwalitptl/frontdesk/internal/service/patient"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := &model.Patient{SerialNumber: "P-7", Name: "Kiran", Phone: "555-0107", TimesOfVisit: 2}
	patients := memory.NewPatientRepository(p)
	appts := appointment.NewService(memory.NewAppointmentRepository(), patients, memory.NewSlotRepository(), appointment.Options{})
	_, err := appts.Book(context.Background(), appointment.BookRequest{
		PatientID: p.ID, Date: model.MustParseDate("2024-06-10"), Time: model.Clock(10, 0), Duration: 30, Notes: "follow-up",
	})
	require.NoError(t, err)

	h := NewHandler(appts, patient.NewService(patients, nil), time.UTC)
	h.now = func() time.Time { return time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC) }

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAppointmentsCSVDownload(t *testing.T) {
	w := get(setup(t), "/api/v1/export/appointments")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="appointments_data_20240610.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Kiran")
	assert.Contains(t, lines[1], "follow-up")
}

func TestAppointmentsICSDownload(t *testing.T) {
	w := get(setup(t), "/api/v1/export/appointments.ics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "appointments_data_20240610.ics")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
	assert.Contains(t, w.Body.String(), "DTSTART:20240610T100000Z")
}

func TestPatientsCSVDownload(t *testing.T) {
	w := get(setup(t), "/api/v1/export/patients")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "patients_data_20240610.csv")
	assert.Contains(t, w.Body.String(), "P-7,Kiran,555-0107")
}
