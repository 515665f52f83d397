package service

import (
	"fmt"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/internal/realtime"

	"github.com/rs/zerolog"
)

type PoliceService struct {
	policeStore    PoliceStore
	emergencyStore EmergencyStore
	notifier       Notifier
	log            zerolog.Logger
}

func NewPoliceService(policeStore PoliceStore, emergencyStore EmergencyStore, notifier Notifier, log zerolog.Logger) *PoliceService {
	return &PoliceService{
		policeStore:    policeStore,
		emergencyStore: emergencyStore,
		notifier:       notifier,
		log:            log,
	}
}

// RequestClearance files a traffic-coordination request for a claimed
// emergency. At most one request per emergency; a duplicate is a conflict.
func (s *PoliceService) RequestClearance(emergencyID, hospitalID uint, notes string) (*models.PoliceRequest, error) {
	e, err := s.emergencyStore.GetByID(emergencyID)
	if err != nil {
		return nil, err
	}
	if e.HospitalID == nil || *e.HospitalID != hospitalID {
		return nil, apperrors.NewValidation("emergency_id", "emergency is not claimed by this hospital")
	}

	req := &models.PoliceRequest{
		EmergencyID:  emergencyID,
		HospitalID:   hospitalID,
		Status:       models.PoliceRequestPending,
		TrafficNotes: notes,
	}
	if err := s.policeStore.Create(req); err != nil {
		return nil, err
	}

	s.notifier.Publish(realtime.TopicPolice, "clearance.requested", req)
	s.log.Info().
		Uint("emergency_id", emergencyID).
		Uint("hospital_id", hospitalID).
		Msg("police clearance requested")

	return req, nil
}

// Acknowledge marks a request as seen by the police dashboard. Acknowledging
// twice is a validation error, not a silent overwrite of the timestamp.
func (s *PoliceService) Acknowledge(requestID uint) (*models.PoliceRequest, error) {
	ok, err := s.policeStore.Acknowledge(requestID)
	if err != nil {
		return nil, err
	}
	if !ok {
		req, err := s.policeStore.GetByID(requestID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidation("status",
			fmt.Sprintf("request is %s, only pending requests can be acknowledged", req.Status))
	}
	return s.policeStore.GetByID(requestID)
}

// UpdateNotes replaces the traffic notes on a request.
func (s *PoliceService) UpdateNotes(requestID uint, notes string) (*models.PoliceRequest, error) {
	if err := s.policeStore.UpdateNotes(requestID, notes); err != nil {
		return nil, err
	}
	return s.policeStore.GetByID(requestID)
}

// Clear marks a request as cleared.
func (s *PoliceService) Clear(requestID uint) (*models.PoliceRequest, error) {
	if err := s.policeStore.SetStatus(requestID, models.PoliceRequestCleared); err != nil {
		return nil, err
	}
	return s.policeStore.GetByID(requestID)
}

// ListOpen returns the police dashboard queue.
func (s *PoliceService) ListOpen() ([]models.PoliceRequest, error) {
	return s.policeStore.ListOpen()
}
