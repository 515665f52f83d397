package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/config"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/internal/realtime"
)

func testDispatchConfig() config.DispatchConfig {
	return config.DispatchConfig{
		DistanceWeight:       0.4,
		LoadWeight:           0.3,
		SpecializationWeight: 0.3,
		SearchRadiusKm:       50,
		MaxResults:           50,
		NotifyNearest:        3,
		RenotifyAfter:        5 * time.Minute,
		WorkerInterval:       10 * time.Second,
	}
}

type intakeFixture struct {
	emergencies *memEmergencyStore
	hospitals   *memHospitalStore
	ambulances  *memAmbulanceStore
	notifier    *memNotifier
	ranking     *RankingService
	svc         *EmergencyService
}

func newIntakeFixture(notifyNearest int) *intakeFixture {
	f := &intakeFixture{
		emergencies: newMemEmergencyStore(),
		hospitals:   newMemHospitalStore(),
		ambulances:  newMemAmbulanceStore(),
		notifier:    &memNotifier{},
	}
	cfg := testDispatchConfig()
	cfg.NotifyNearest = notifyNearest
	f.ranking = NewRankingService(f.hospitals, f.ambulances, cfg)
	f.svc = NewEmergencyService(f.emergencies, f.ranking, f.notifier, cfg.NotifyNearest, zerolog.Nop())
	return f
}

// seedHospitalAt places an active general hospital offsetKm north of the
// default patient location.
func (f *intakeFixture) seedHospitalAt(t *testing.T, name string, offsetKm float64) *models.Hospital {
	t.Helper()
	lat := 18.5204 + offsetKm/111.0
	lng := 73.8567
	h := &models.Hospital{
		Name:      name,
		Username:  name,
		Latitude:  &lat,
		Longitude: &lng,
		TotalBeds: 60,
		IsActive:  true,
	}
	require.NoError(t, f.hospitals.Create(h))
	return h
}

func validReport() ReportInput {
	lat, lng := 18.5204, 73.8567
	return ReportInput{
		PhoneNumber: "+919812345678",
		Name:        "A. Deshmukh",
		Latitude:    &lat,
		Longitude:   &lng,
		Level:       models.LevelHigh,
		Description: "road accident near the flyover",
	}
}

func TestEmergencyService_Report(t *testing.T) {
	t.Run("should create a pending emergency with a report code", func(t *testing.T) {
		f := newIntakeFixture(3)
		f.seedHospitalAt(t, "Ruby Hall", 1)

		result, err := f.svc.Report(validReport())
		require.NoError(t, err)

		e := result.Emergency
		assert.Equal(t, models.StatusPending, e.Status)
		assert.NotEmpty(t, e.ReportCode)
		assert.Nil(t, e.HospitalID)

		stored, err := f.emergencies.GetByReportCode(e.ReportCode)
		require.NoError(t, err)
		assert.Equal(t, e.ID, stored.ID)
	})

	t.Run("should require a phone number", func(t *testing.T) {
		f := newIntakeFixture(3)
		input := validReport()
		input.PhoneNumber = "   "

		_, err := f.svc.Report(input)
		assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("should require both coordinates", func(t *testing.T) {
		f := newIntakeFixture(3)
		input := validReport()
		input.Longitude = nil

		_, err := f.svc.Report(input)
		assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("should default a missing level to medium", func(t *testing.T) {
		f := newIntakeFixture(3)
		input := validReport()
		input.Level = ""

		result, err := f.svc.Report(input)
		require.NoError(t, err)
		assert.Equal(t, models.LevelMedium, result.Emergency.Level)
	})

	t.Run("should reject an unknown level", func(t *testing.T) {
		f := newIntakeFixture(3)
		input := validReport()
		input.Level = "catastrophic"

		_, err := f.svc.Report(input)
		assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("should notify the nearest hospitals by distance", func(t *testing.T) {
		f := newIntakeFixture(2)
		near := f.seedHospitalAt(t, "Near Hospital", 1)
		mid := f.seedHospitalAt(t, "Mid Hospital", 5)
		f.seedHospitalAt(t, "Far Hospital", 20)

		result, err := f.svc.Report(validReport())
		require.NoError(t, err)

		require.Len(t, result.Notified, 2)
		assert.Equal(t, "Near Hospital", result.Notified[0].Name)
		assert.Equal(t, "Mid Hospital", result.Notified[1].Name)

		topics := f.notifier.topicsOf("emergency.reported")
		assert.ElementsMatch(t, []string{
			realtime.HospitalTopic(near.ID),
			realtime.HospitalTopic(mid.ID),
		}, topics)
	})

	t.Run("should skip non-emergency facilities in the fan-out", func(t *testing.T) {
		f := newIntakeFixture(5)
		f.seedHospitalAt(t, "Pearl Dental Hospital", 1)
		general := f.seedHospitalAt(t, "General Hospital", 2)

		result, err := f.svc.Report(validReport())
		require.NoError(t, err)

		require.Len(t, result.Notified, 1)
		assert.Equal(t, general.ID, result.Notified[0].HospitalID)
	})

	t.Run("should still accept the report when no hospital is in range", func(t *testing.T) {
		f := newIntakeFixture(3)

		result, err := f.svc.Report(validReport())
		require.NoError(t, err)
		assert.Empty(t, result.Notified)
		assert.Equal(t, models.StatusPending, result.Emergency.Status)
	})
}

func TestEmergencyService_GetByReportCode(t *testing.T) {
	f := newIntakeFixture(3)

	t.Run("should require a code", func(t *testing.T) {
		_, err := f.svc.GetByReportCode(" ")
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("should surface not found", func(t *testing.T) {
		_, err := f.svc.GetByReportCode("no-such-code")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRankingService_RankHospitals(t *testing.T) {
	t.Run("should require coordinates", func(t *testing.T) {
		f := newIntakeFixture(3)
		lat := 18.5204

		_, err := f.ranking.RankHospitals(nil, nil)
		assert.True(t, apperrors.IsValidation(err))

		_, err = f.ranking.RankHospitals(&lat, nil)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("should return an empty list when nothing is in range", func(t *testing.T) {
		f := newIntakeFixture(3)
		lat, lng := 18.5204, 73.8567

		ranked, err := f.ranking.RankHospitals(&lat, &lng)
		require.NoError(t, err)
		assert.Empty(t, ranked)
	})

	t.Run("should attach bed and ambulance availability", func(t *testing.T) {
		f := newIntakeFixture(3)
		h := f.seedHospitalAt(t, "Ruby Hall", 1)
		require.NoError(t, f.hospitals.UpdateBedOccupancy(h.ID, 45))
		require.NoError(t, f.ambulances.Create(&models.Ambulance{
			HospitalID: h.ID, VehicleNumber: "MH12AB1234", IsAvailable: true,
		}))
		require.NoError(t, f.ambulances.Create(&models.Ambulance{
			HospitalID: h.ID, VehicleNumber: "MH12AB5678", IsAvailable: false,
		}))

		lat, lng := 18.5204, 73.8567
		ranked, err := f.ranking.RankHospitals(&lat, &lng)
		require.NoError(t, err)
		require.Len(t, ranked, 1)

		avail := ranked[0].Availability
		assert.Equal(t, 15, avail.FreeBeds)
		assert.Equal(t, 60, avail.TotalBeds)
		assert.Equal(t, 1, avail.AvailableAmbulances)
	})

	t.Run("should order by composite score best first", func(t *testing.T) {
		f := newIntakeFixture(3)
		near := f.seedHospitalAt(t, "Near Hospital", 1)
		crowded := f.seedHospitalAt(t, "Crowded Hospital", 2)
		require.NoError(t, f.hospitals.UpdateBedOccupancy(crowded.ID, 60))

		lat, lng := 18.5204, 73.8567
		ranked, err := f.ranking.RankHospitals(&lat, &lng)
		require.NoError(t, err)
		require.Len(t, ranked, 2)
		assert.Equal(t, near.ID, ranked[0].HospitalID)
		assert.GreaterOrEqual(t, ranked[0].CompositeScore, ranked[1].CompositeScore)
	})
}

func TestRankingService_NearestEligible(t *testing.T) {
	t.Run("should order by raw distance regardless of load", func(t *testing.T) {
		f := newIntakeFixture(3)
		// The nearest hospital is packed; ranking would sink it but the
		// notification fan-out must not.
		near := f.seedHospitalAt(t, "Near Packed Hospital", 1)
		require.NoError(t, f.hospitals.UpdateBedOccupancy(near.ID, 60))
		f.seedHospitalAt(t, "Far Empty Hospital", 10)

		lat, lng := 18.5204, 73.8567
		nearest, err := f.ranking.NearestEligible(&lat, &lng, 2)
		require.NoError(t, err)
		require.Len(t, nearest, 2)
		assert.Equal(t, near.ID, nearest[0].HospitalID)
	})

	t.Run("should cap at n", func(t *testing.T) {
		f := newIntakeFixture(3)
		for i := 0; i < 5; i++ {
			f.seedHospitalAt(t, fmt.Sprintf("Hospital %d", i), float64(i+1))
		}

		lat, lng := 18.5204, 73.8567
		nearest, err := f.ranking.NearestEligible(&lat, &lng, 2)
		require.NoError(t, err)
		assert.Len(t, nearest, 2)
	})
}
