package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergency-response-backend/internal/models"
	"emergency-response-backend/internal/realtime"
)

func newWorkerFixture(t *testing.T) (*intakeFixture, *WorkerService) {
	t.Helper()
	f := newIntakeFixture(3)
	cfg := testDispatchConfig()
	w := NewWorkerService(f.emergencies, f.ambulances, f.svc, cfg, zerolog.Nop())
	return f, w
}

func TestWorkerService_RenotifyStalePending(t *testing.T) {
	t.Run("should re-announce only stale unclaimed emergencies", func(t *testing.T) {
		f, w := newWorkerFixture(t)
		h := f.seedHospitalAt(t, "Ruby Hall", 1)

		stale, err := f.svc.Report(validReport())
		require.NoError(t, err)

		// A second, fresh report that must not be re-announced
		_, err = f.svc.Report(validReport())
		require.NoError(t, err)

		// Age the first report past the re-notify window
		f.emergencies.mu.Lock()
		f.emergencies.rows[stale.Emergency.ID].UpdatedAt =
			time.Now().UTC().Add(-10 * time.Minute)
		f.emergencies.mu.Unlock()

		before := len(f.notifier.topicsOf("emergency.reported"))
		w.renotifyStalePending()
		after := f.notifier.topicsOf("emergency.reported")

		// One re-announcement to the single in-range hospital
		require.Len(t, after, before+1)
		assert.Equal(t, realtime.HospitalTopic(h.ID), after[len(after)-1])

		// Touch prevents a second announcement on the next tick
		w.renotifyStalePending()
		assert.Len(t, f.notifier.topicsOf("emergency.reported"), before+1)
	})

	t.Run("should skip claimed emergencies", func(t *testing.T) {
		f, w := newWorkerFixture(t)
		f.seedHospitalAt(t, "Ruby Hall", 1)

		result, err := f.svc.Report(validReport())
		require.NoError(t, err)

		ok, err := f.emergencies.Claim(result.Emergency.ID, &models.Hospital{ID: 1, Name: "Ruby Hall"})
		require.NoError(t, err)
		require.True(t, ok)

		f.emergencies.mu.Lock()
		f.emergencies.rows[result.Emergency.ID].UpdatedAt =
			time.Now().UTC().Add(-10 * time.Minute)
		f.emergencies.mu.Unlock()

		before := len(f.notifier.topicsOf("emergency.reported"))
		w.renotifyStalePending()
		assert.Len(t, f.notifier.topicsOf("emergency.reported"), before)
	})
}

func TestWorkerService_ReconcileAvailability(t *testing.T) {
	t.Run("should release idle vehicles and keep busy ones", func(t *testing.T) {
		f, w := newWorkerFixture(t)

		idle := &models.Ambulance{HospitalID: 1, VehicleNumber: "MH12AB1111", IsAvailable: false}
		busy := &models.Ambulance{HospitalID: 1, VehicleNumber: "MH12AB2222", IsAvailable: false}
		require.NoError(t, f.ambulances.Create(idle))
		require.NoError(t, f.ambulances.Create(busy))

		lat, lng := 18.53, 73.85
		busyID := busy.ID
		mission := &models.Emergency{
			ReportCode:          uuid.New().String(),
			PhoneNumber:         "+919812345678",
			Latitude:            &lat,
			Longitude:           &lng,
			Status:              models.StatusDispatched,
			AssignedAmbulanceID: &busyID,
		}
		require.NoError(t, f.emergencies.Create(mission))

		w.reconcileAvailability()

		released, err := f.ambulances.GetByID(idle.ID)
		require.NoError(t, err)
		assert.True(t, released.IsAvailable)

		stillBusy, err := f.ambulances.GetByID(busy.ID)
		require.NoError(t, err)
		assert.False(t, stillBusy.IsAvailable)
	})
}
