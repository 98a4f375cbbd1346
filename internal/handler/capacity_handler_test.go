package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hospital-capacity-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIngester struct {
	err      error
	calls    int
	hospital service.HospitalData
	capacity *service.CapacityData
	meta     service.ReportMeta
}

func (m *mockIngester) ProcessCapacityUpdate(_ context.Context, hospital service.HospitalData, capacity *service.CapacityData, meta service.ReportMeta) error {
	m.calls++
	m.hospital = hospital
	m.capacity = capacity
	m.meta = meta
	return m.err
}

func capacityRouter(ingester CapacityIngester) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/capacity/update", NewCapacityHandler(ingester).UpdateCapacity)
	return r
}

func postCapacity(t *testing.T, r *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/capacity/update", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"hospital_id": "hosp-1",
		"name":        "General Hospital",
		"location":    map[string]float64{"lat": 40.0, "lon": 30.0},
		"city":        "Ankara",
		"capacity": map[string]int{
			"total_beds":     100,
			"available_beds": 10,
			"icu_total":      20,
			"icu_available":  5,
		},
		"updated_at": "2026-03-01T12:00:00Z",
	}
}

func TestUpdateCapacityAccepted(t *testing.T) {
	ingester := &mockIngester{}
	w := postCapacity(t, capacityRouter(ingester), validBody())

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, ingester.calls)
	assert.Equal(t, "hosp-1", ingester.hospital.ID)
	assert.Equal(t, "api", ingester.meta.Source, "HTTP path defaults the source tag")
	require.NotNil(t, ingester.capacity)
	assert.Equal(t, 10, ingester.capacity.AvailableBeds)
	assert.Contains(t, w.Body.String(), `"accepted"`)
}

func TestUpdateCapacityWithoutCapacityBlock(t *testing.T) {
	ingester := &mockIngester{}
	body := validBody()
	delete(body, "capacity")

	w := postCapacity(t, capacityRouter(ingester), body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, ingester.capacity)
}

func TestUpdateCapacityMissingRequiredFields(t *testing.T) {
	for _, field := range []string{"hospital_id", "name", "location"} {
		t.Run(field, func(t *testing.T) {
			ingester := &mockIngester{}
			body := validBody()
			delete(body, field)

			w := postCapacity(t, capacityRouter(ingester), body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, ingester.calls)
		})
	}
}

func TestUpdateCapacityBadTimestamp(t *testing.T) {
	ingester := &mockIngester{}
	body := validBody()
	body["updated_at"] = "yesterday"

	w := postCapacity(t, capacityRouter(ingester), body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ingester.calls)
}

func TestUpdateCapacityValidationErrorFromService(t *testing.T) {
	ingester := &mockIngester{err: fmt.Errorf("%w: lat out of valid range", service.ErrValidation)}
	w := postCapacity(t, capacityRouter(ingester), validBody())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCapacityPublishFailureStillAccepted(t *testing.T) {
	ingester := &mockIngester{err: fmt.Errorf("%w: nats timeout", service.ErrEventPublish)}
	w := postCapacity(t, capacityRouter(ingester), validBody())

	assert.Equal(t, http.StatusOK, w.Code, "the write committed, publish failure is not a request failure")
	assert.Contains(t, w.Body.String(), "warning")
}

func TestUpdateCapacityPersistenceFailure(t *testing.T) {
	ingester := &mockIngester{err: errors.New("connection refused")}
	w := postCapacity(t, capacityRouter(ingester), validBody())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
