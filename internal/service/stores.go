package service

import (
	"time"

	"emergency-response-backend/internal/models"
)

// Store interfaces consumed by the services. The repository package provides
// the MySQL implementations; tests substitute in-memory fakes.

type HospitalStore interface {
	Create(h *models.Hospital) error
	GetByID(id uint) (*models.Hospital, error)
	GetByUsername(username string) (*models.Hospital, error)
	GetAllActive() ([]models.Hospital, error)
	FindWithinRadius(lat, lng, radiusKm float64) ([]models.Hospital, error)
	UpdateBedOccupancy(id uint, occupied int) error
	TouchLastLogin(id uint) error
	SoftDelete(id uint) error
}

type EmergencyStore interface {
	Create(e *models.Emergency) error
	GetByID(id uint) (*models.Emergency, error)
	GetByReportCode(code string) (*models.Emergency, error)
	ListPending() ([]models.Emergency, error)
	ListByHospital(hospitalID uint) ([]models.Emergency, error)
	Claim(emergencyID uint, h *models.Hospital) (bool, error)
	AssignAmbulance(emergencyID, hospitalID uint, a *models.Ambulance) (bool, error)
	TransitionStatus(emergencyID uint, from []models.EmergencyStatus, to models.EmergencyStatus) (bool, error)
	ListActiveByAmbulance(ambulanceID uint) ([]models.Emergency, error)
	CountActiveByAmbulance(ambulanceID uint) (int64, error)
	ListStalePending(cutoff time.Time) ([]models.Emergency, error)
	Touch(id uint) error
}

type AmbulanceStore interface {
	Create(a *models.Ambulance) error
	GetByID(id uint) (*models.Ambulance, error)
	ListByHospital(hospitalID uint) ([]models.AmbulanceWithMissions, error)
	SetAvailability(id uint, available bool) error
	UpdateLocation(id uint, lat, lng float64) error
	ListUnavailable() ([]models.Ambulance, error)
	CountAvailableByHospital(hospitalIDs []uint) (map[uint]int, error)
}

type PoliceStore interface {
	Create(req *models.PoliceRequest) error
	GetByID(id uint) (*models.PoliceRequest, error)
	ListOpen() ([]models.PoliceRequest, error)
	Acknowledge(id uint) (bool, error)
	UpdateNotes(id uint, notes string) error
	SetStatus(id uint, status models.PoliceRequestStatus) error
}

type AuditStore interface {
	CreateAuditLog(userID *uint, action string, details string) error
}

// Notifier pushes events to dashboard subscribers. The realtime hub
// implements it; dashboards that miss an event recover via polling.
type Notifier interface {
	Publish(topic, eventType string, payload interface{})
}
