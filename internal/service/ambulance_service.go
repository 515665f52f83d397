package service

import (
	"fmt"
	"strings"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/internal/realtime"

	"github.com/rs/zerolog"
)

// RegisterAmbulanceInput is the fleet-registration payload.
type RegisterAmbulanceInput struct {
	VehicleNumber string `json:"vehicle_number"`
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone"`
}

type AmbulanceService struct {
	ambulanceStore AmbulanceStore
	emergencyStore EmergencyStore
	notifier       Notifier
	log            zerolog.Logger
}

func NewAmbulanceService(ambulanceStore AmbulanceStore, emergencyStore EmergencyStore, notifier Notifier, log zerolog.Logger) *AmbulanceService {
	return &AmbulanceService{
		ambulanceStore: ambulanceStore,
		emergencyStore: emergencyStore,
		notifier:       notifier,
		log:            log,
	}
}

// Register adds a vehicle to a hospital's fleet.
func (s *AmbulanceService) Register(hospitalID uint, input RegisterAmbulanceInput) (*models.Ambulance, error) {
	if strings.TrimSpace(input.VehicleNumber) == "" {
		return nil, apperrors.NewValidation("vehicle_number", "required")
	}

	a := &models.Ambulance{
		HospitalID:    hospitalID,
		VehicleNumber: strings.TrimSpace(input.VehicleNumber),
		DriverName:    strings.TrimSpace(input.DriverName),
		DriverPhone:   strings.TrimSpace(input.DriverPhone),
		IsAvailable:   true,
	}
	if err := s.ambulanceStore.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Fleet returns a hospital's vehicles with active mission counts.
func (s *AmbulanceService) Fleet(hospitalID uint) ([]models.AmbulanceWithMissions, error) {
	return s.ambulanceStore.ListByHospital(hospitalID)
}

// ReportLocation records a driver GPS fix, last write wins. Reporting is
// best-effort: a store failure is logged and dropped, never retried, and the
// caller still gets success. Fresh fixes are forwarded to the tracking
// topics of the vehicle's active missions.
func (s *AmbulanceService) ReportLocation(ambulanceID uint, lat, lng *float64) error {
	if lat == nil || lng == nil {
		return apperrors.NewValidation("location", "latitude and longitude are required")
	}

	if err := s.ambulanceStore.UpdateLocation(ambulanceID, *lat, *lng); err != nil {
		s.log.Warn().Err(err).
			Uint("ambulance_id", ambulanceID).
			Msg("dropping GPS fix")
		return nil
	}

	missions, err := s.emergencyStore.ListActiveByAmbulance(ambulanceID)
	if err != nil {
		s.log.Warn().Err(err).Uint("ambulance_id", ambulanceID).Msg("skipping location fan-out")
		return nil
	}
	for _, m := range missions {
		s.notifier.Publish(realtime.EmergencyTopic(m.ReportCode), "ambulance.location",
			map[string]interface{}{
				"ambulance_id":   ambulanceID,
				"vehicle_number": m.AssignedAmbulanceNumber,
				"latitude":       *lat,
				"longitude":      *lng,
			})
	}
	return nil
}

// Get returns one vehicle.
func (s *AmbulanceService) Get(ambulanceID uint) (*models.Ambulance, error) {
	a, err := s.ambulanceStore.GetByID(ambulanceID)
	if err != nil {
		return nil, fmt.Errorf("loading ambulance %d: %w", ambulanceID, err)
	}
	return a, nil
}
