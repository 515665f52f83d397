package repository

import (
	"errors"
	"time"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"

	"gorm.io/gorm"
)

type AmbulanceRepository struct {
	db *gorm.DB
}

func NewAmbulanceRepo(db *gorm.DB) *AmbulanceRepository {
	return &AmbulanceRepository{db: db}
}

// Create registers a new vehicle
func (r *AmbulanceRepository) Create(a *models.Ambulance) error {
	err := r.db.Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperrors.ConflictError{Resource: "vehicle number " + a.VehicleNumber}
	}
	return err
}

// GetByID retrieves an ambulance by ID
func (r *AmbulanceRepository) GetByID(id uint) (*models.Ambulance, error) {
	var a models.Ambulance
	err := r.db.First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByHospital returns a hospital's fleet with active mission counts
func (r *AmbulanceRepository) ListByHospital(hospitalID uint) ([]models.AmbulanceWithMissions, error) {
	var fleet []models.AmbulanceWithMissions
	err := r.db.Model(&models.Ambulance{}).
		Select("ambulances.*, COUNT(e.id) AS active_missions").
		Joins(`LEFT JOIN sos_emergencies e ON e.assigned_ambulance_id = ambulances.id AND e.status IN ?`,
			[]models.EmergencyStatus{models.StatusDispatched, models.StatusInProgress}).
		Where("ambulances.hospital_id = ?", hospitalID).
		Group("ambulances.id").
		Order("ambulances.vehicle_number ASC").
		Find(&fleet).Error
	return fleet, err
}

// SetAvailability flips the advisory availability flag
func (r *AmbulanceRepository) SetAvailability(id uint, available bool) error {
	res := r.db.Model(&models.Ambulance{}).
		Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateLocation records the last reported GPS fix, last write wins
func (r *AmbulanceRepository) UpdateLocation(id uint, lat, lng float64) error {
	res := r.db.Model(&models.Ambulance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"latitude":     lat,
			"longitude":    lng,
			"last_updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListUnavailable returns all vehicles currently flagged unavailable.
// Used by the background worker to reconcile the flag against real
// mission counts.
func (r *AmbulanceRepository) ListUnavailable() ([]models.Ambulance, error) {
	var list []models.Ambulance
	err := r.db.Where("is_available = ?", false).Find(&list).Error
	return list, err
}

// CountAvailableByHospital returns per-hospital counts of available vehicles
func (r *AmbulanceRepository) CountAvailableByHospital(hospitalIDs []uint) (map[uint]int, error) {
	if len(hospitalIDs) == 0 {
		return map[uint]int{}, nil
	}
	type row struct {
		HospitalID uint
		N          int
	}
	var rows []row
	err := r.db.Model(&models.Ambulance{}).
		Select("hospital_id, COUNT(*) AS n").
		Where("hospital_id IN ? AND is_available = ?", hospitalIDs, true).
		Group("hospital_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, rw := range rows {
		counts[rw.HospitalID] = rw.N
	}
	return counts, nil
}
