package service

import (
	"fmt"
	"strings"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/internal/realtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportInput is the patient-facing SOS intake payload.
type ReportInput struct {
	PhoneNumber       string                `json:"phone_number"`
	Name              string                `json:"name"`
	Latitude          *float64              `json:"latitude"`
	Longitude         *float64              `json:"longitude"`
	Level             models.EmergencyLevel `json:"emergency_level"`
	Description       string                `json:"description"`
	BloodGroup        string                `json:"blood_group"`
	Allergies         string                `json:"allergies"`
	MedicalConditions string                `json:"medical_conditions"`
}

// ReportResult is what the intake returns: the created record plus the
// hospitals that were notified.
type ReportResult struct {
	Emergency *models.Emergency `json:"emergency"`
	Notified  []RankedHospital  `json:"notified_hospitals"`
}

type EmergencyService struct {
	emergencyStore EmergencyStore
	ranking        *RankingService
	notifier       Notifier
	notifyNearest  int
	log            zerolog.Logger
}

func NewEmergencyService(emergencyStore EmergencyStore, ranking *RankingService, notifier Notifier, notifyNearest int, log zerolog.Logger) *EmergencyService {
	return &EmergencyService{
		emergencyStore: emergencyStore,
		ranking:        ranking,
		notifier:       notifier,
		notifyNearest:  notifyNearest,
		log:            log,
	}
}

// Report validates and persists a new SOS, then notifies the nearest
// eligible hospitals. No hospital is assigned here; any notified hospital may
// claim the emergency, first writer wins.
func (s *EmergencyService) Report(input ReportInput) (*ReportResult, error) {
	if strings.TrimSpace(input.PhoneNumber) == "" {
		return nil, apperrors.NewValidation("phone_number", "required")
	}
	if input.Latitude == nil || input.Longitude == nil {
		return nil, apperrors.NewValidation("location", "patient coordinates are required")
	}
	if input.Level == "" {
		input.Level = models.LevelMedium
	}
	if !models.ValidLevel(input.Level) {
		return nil, apperrors.NewValidation("emergency_level", "must be one of low, medium, high, critical")
	}

	e := &models.Emergency{
		ReportCode:        uuid.New().String(),
		PhoneNumber:       strings.TrimSpace(input.PhoneNumber),
		Name:              strings.TrimSpace(input.Name),
		Latitude:          input.Latitude,
		Longitude:         input.Longitude,
		Level:             input.Level,
		Status:            models.StatusPending,
		Description:       input.Description,
		BloodGroup:        input.BloodGroup,
		Allergies:         input.Allergies,
		MedicalConditions: input.MedicalConditions,
	}
	if err := s.emergencyStore.Create(e); err != nil {
		return nil, fmt.Errorf("creating emergency: %w", err)
	}

	notified := s.NotifyNearest(e)

	s.log.Info().
		Str("report_code", e.ReportCode).
		Str("level", string(e.Level)).
		Int("notified", len(notified)).
		Msg("emergency reported")

	return &ReportResult{Emergency: e, Notified: notified}, nil
}

// NotifyNearest publishes a new-emergency event to the nearest eligible
// hospitals and returns the list. Notification failure never fails the
// intake; an unclaimed emergency is re-announced by the background worker.
func (s *EmergencyService) NotifyNearest(e *models.Emergency) []RankedHospital {
	nearest, err := s.ranking.NearestEligible(e.Latitude, e.Longitude, s.notifyNearest)
	if err != nil {
		s.log.Error().Err(err).
			Str("report_code", e.ReportCode).
			Msg("hospital fan-out failed")
		return nil
	}

	for _, h := range nearest {
		s.notifier.Publish(realtime.HospitalTopic(h.HospitalID), "emergency.reported", e)
	}
	return nearest
}

// GetByReportCode returns the patient-facing view of an emergency.
func (s *EmergencyService) GetByReportCode(code string) (*models.Emergency, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewValidation("report_code", "required")
	}
	return s.emergencyStore.GetByReportCode(code)
}

// ListPending returns unclaimed emergencies for the hospital dashboards.
func (s *EmergencyService) ListPending() ([]models.Emergency, error) {
	return s.emergencyStore.ListPending()
}

// ListByHospital returns the emergencies claimed by a hospital.
func (s *EmergencyService) ListByHospital(hospitalID uint) ([]models.Emergency, error) {
	return s.emergencyStore.ListByHospital(hospitalID)
}
