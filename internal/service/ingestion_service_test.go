package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hospital-capacity-backend/internal/models"
	"hospital-capacity-backend/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct {
	applyErr error
	calls    int
	hospital *models.Hospital
	snapshot *models.CapacitySnapshot
}

func (m *mockStore) ApplyCapacityUpdate(_ context.Context, hospital *models.Hospital, snapshot *models.CapacitySnapshot) error {
	m.calls++
	m.hospital = hospital
	m.snapshot = snapshot
	return m.applyErr
}

type mockPublisher struct {
	err     error
	calls   int
	subject string
	payload interface{}
}

func (m *mockPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	m.calls++
	m.subject = subject
	m.payload = payload
	return m.err
}

func newTestIngestion(store *mockStore, pub *mockPublisher) *IngestionService {
	return NewIngestionService(store, pub, observability.NewMetricsForTesting())
}

func validReport() (HospitalData, *CapacityData, ReportMeta) {
	hospital := HospitalData{
		ID:   "hosp-1",
		Name: "General Hospital",
		City: "Ankara",
		Lat:  39.93,
		Lon:  32.85,
	}
	capacity := &CapacityData{TotalBeds: 100, AvailableBeds: 10, ICUTotal: 20, ICUAvailable: 5}
	meta := ReportMeta{UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), Source: "api"}
	return hospital, capacity, meta
}

// --- tests ---

func TestProcessCapacityUpdatePersistsAndPublishes(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	svc := newTestIngestion(store, pub)

	hospital, capacity, meta := validReport()
	require.NoError(t, svc.ProcessCapacityUpdate(context.Background(), hospital, capacity, meta))

	require.Equal(t, 1, store.calls)
	assert.Equal(t, "hosp-1", store.hospital.ID)
	require.NotNil(t, store.snapshot)
	assert.Equal(t, 10, store.snapshot.AvailableBeds)
	assert.Equal(t, "api", store.snapshot.Source)
	assert.Equal(t, meta.UpdatedAt, store.snapshot.ReportedAt)

	require.Equal(t, 1, pub.calls)
	assert.Equal(t, SubjectCapacityUpdated, pub.subject)
}

func TestProcessCapacityUpdateOverridesEventSource(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	svc := newTestIngestion(store, pub)

	hospital, capacity, meta := validReport()
	meta.Source = "stream-consumer"
	require.NoError(t, svc.ProcessCapacityUpdate(context.Background(), hospital, capacity, meta))

	payload, ok := pub.payload.(CapacityUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, ServiceSource, payload.Source)
	assert.Equal(t, "hosp-1", payload.HospitalID)
	assert.Equal(t, 39.93, payload.Location.Lat)
	assert.Equal(t, capacity, payload.Capacity)
}

func TestProcessCapacityUpdateDefaultsCity(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	svc := newTestIngestion(store, pub)

	hospital, capacity, meta := validReport()
	hospital.City = ""
	require.NoError(t, svc.ProcessCapacityUpdate(context.Background(), hospital, capacity, meta))

	assert.Equal(t, "Unknown", store.hospital.City)
	payload := pub.payload.(CapacityUpdatedPayload)
	assert.Equal(t, "Unknown", payload.City)
}

func TestProcessCapacityUpdateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HospitalData)
	}{
		{"missing id", func(h *HospitalData) { h.ID = "" }},
		{"missing name", func(h *HospitalData) { h.Name = "" }},
		{"lat out of range", func(h *HospitalData) { h.Lat = 91 }},
		{"lon out of range", func(h *HospitalData) { h.Lon = -181 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{}
			pub := &mockPublisher{}
			svc := newTestIngestion(store, pub)

			hospital, capacity, meta := validReport()
			tt.mutate(&hospital)

			err := svc.ProcessCapacityUpdate(context.Background(), hospital, capacity, meta)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, store.calls, "rejected report must not touch storage")
			assert.Zero(t, pub.calls)
		})
	}
}

func TestProcessCapacityUpdateStoreFailure(t *testing.T) {
	store := &mockStore{applyErr: errors.New("connection refused")}
	pub := &mockPublisher{}
	svc := newTestIngestion(store, pub)

	hospital, capacity, meta := validReport()
	err := svc.ProcessCapacityUpdate(context.Background(), hospital, capacity, meta)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrEventPublish)
	assert.Zero(t, pub.calls, "no event after a rolled back transaction")
}

func TestProcessCapacityUpdatePublishFailureAfterCommit(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{err: errors.New("nats timeout")}
	svc := newTestIngestion(store, pub)

	hospital, capacity, meta := validReport()
	err := svc.ProcessCapacityUpdate(context.Background(), hospital, capacity, meta)

	assert.ErrorIs(t, err, ErrEventPublish)
	assert.Equal(t, 1, store.calls, "write must stand even when publish fails")
}

func TestProcessCapacityUpdateWithoutCapacity(t *testing.T) {
	store := &mockStore{}
	pub := &mockPublisher{}
	svc := newTestIngestion(store, pub)

	hospital, _, meta := validReport()
	require.NoError(t, svc.ProcessCapacityUpdate(context.Background(), hospital, nil, meta))

	assert.Nil(t, store.snapshot, "registration without capacity writes no snapshot")
	require.Equal(t, 1, pub.calls)
	payload := pub.payload.(CapacityUpdatedPayload)
	assert.Nil(t, payload.Capacity)
}
