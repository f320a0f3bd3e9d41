package patient

import (
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
	"github.com/jwalitptl/frontdesk/internal/service/patient"
)

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	r := gin.New()
	NewHandler(patient.NewService(memory.NewPatientRepository(), nil)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndFetchPatient(t *testing.T) {
	r := setup()

	w := do(r, http.MethodPost, "/api/v1/patients", `{
		"serial_number": "P-100",
		"patient_name": "Meera Shah",
		"phone_number": "555-0199",
		"age": 34,
		"sex": "F",
		"marital_status": "married",
		"problem": "migraine"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data model.Patient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, created.Data.TimesOfVisit)

	w = do(r, http.MethodGet, "/api/v1/patients/"+created.Data.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Meera Shah")

	w = do(r, http.MethodGet, "/api/v1/patients?search_term=meera", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "P-100")

	w = do(r, http.MethodGet, "/api/v1/patients?search_term=nobody", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":[]}`, w.Body.String())
}

func TestCreatePatientValidation(t *testing.T) {
	r := setup()

	w := do(r, http.MethodPost, "/api/v1/patients", `{"patient_name": "No Serial"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "serial_number: is required")

	w = do(r, http.MethodGet, "/api/v1/patients/42", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/patients/7d0f1c3e-8a51-4c39-9c36-7d2b2d1b0a11", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
