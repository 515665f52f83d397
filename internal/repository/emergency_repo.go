package repository

import (
	"errors"
	"time"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"

	"gorm.io/gorm"
)

type EmergencyRepository struct {
	db *gorm.DB
}

func NewEmergencyRepo(db *gorm.DB) *EmergencyRepository {
	return &EmergencyRepository{db: db}
}

// Create persists a new emergency
func (r *EmergencyRepository) Create(e *models.Emergency) error {
	return r.db.Create(e).Error
}

// GetByID retrieves an emergency by ID
func (r *EmergencyRepository) GetByID(id uint) (*models.Emergency, error) {
	var e models.Emergency
	err := r.db.First(&e, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByReportCode retrieves an emergency by its public report code
func (r *EmergencyRepository) GetByReportCode(code string) (*models.Emergency, error) {
	var e models.Emergency
	err := r.db.Where("report_code = ?", code).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListPending returns unclaimed emergencies, newest first
func (r *EmergencyRepository) ListPending() ([]models.Emergency, error) {
	var list []models.Emergency
	err := r.db.
		Where("status = ? AND hospital_id IS NULL", models.StatusPending).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// ListByHospital returns emergencies claimed by the hospital, newest first
func (r *EmergencyRepository) ListByHospital(hospitalID uint) ([]models.Emergency, error) {
	var list []models.Emergency
	err := r.db.
		Where("hospital_id = ?", hospitalID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// Claim performs the pending -> acknowledged transition as a conditional
// update. The WHERE clause is the race guard: only an unclaimed pending row
// matches, so of two concurrent claims exactly one sees RowsAffected == 1.
// A plain read-then-write here would let the second hospital overwrite the
// first.
func (r *EmergencyRepository) Claim(emergencyID uint, h *models.Hospital) (bool, error) {
	res := r.db.Model(&models.Emergency{}).
		Where("id = ? AND status = ? AND hospital_id IS NULL", emergencyID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":                 models.StatusAcknowledged,
			"hospital_id":            h.ID,
			"assigned_hospital_name": h.Name,
			"assigned_hospital_lat":  h.Latitude,
			"assigned_hospital_lng":  h.Longitude,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AssignAmbulance performs the acknowledged -> dispatched transition,
// copying the ambulance snapshot onto the emergency. Guarded on the claiming
// hospital so one hospital cannot dispatch another's emergency.
func (r *EmergencyRepository) AssignAmbulance(emergencyID, hospitalID uint, a *models.Ambulance) (bool, error) {
	res := r.db.Model(&models.Emergency{}).
		Where("id = ? AND status = ? AND hospital_id = ?", emergencyID, models.StatusAcknowledged, hospitalID).
		Updates(map[string]interface{}{
			"status":                    models.StatusDispatched,
			"assigned_ambulance_id":     a.ID,
			"assigned_ambulance_number": a.VehicleNumber,
			"driver_name":               a.DriverName,
			"driver_phone":              a.DriverPhone,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransitionStatus moves an emergency from one of the given statuses to the
// target status. Returns false when the row was not in an allowed source
// state (or does not exist); callers re-read to distinguish the two.
func (r *EmergencyRepository) TransitionStatus(emergencyID uint, from []models.EmergencyStatus, to models.EmergencyStatus) (bool, error) {
	res := r.db.Model(&models.Emergency{}).
		Where("id = ? AND status IN ?", emergencyID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListActiveByAmbulance returns the active missions of a vehicle. An
// ambulance may hold several at once.
func (r *EmergencyRepository) ListActiveByAmbulance(ambulanceID uint) ([]models.Emergency, error) {
	var list []models.Emergency
	err := r.db.
		Where("assigned_ambulance_id = ? AND status IN ?",
			ambulanceID, []models.EmergencyStatus{models.StatusDispatched, models.StatusInProgress}).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// CountActiveByAmbulance counts the active missions of a vehicle
func (r *EmergencyRepository) CountActiveByAmbulance(ambulanceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Emergency{}).
		Where("assigned_ambulance_id = ? AND status IN ?",
			ambulanceID, []models.EmergencyStatus{models.StatusDispatched, models.StatusInProgress}).
		Count(&count).Error
	return count, err
}

// ListStalePending returns unclaimed pending emergencies untouched since the
// cutoff. Used by the background worker to re-publish them; the worker calls
// Touch afterwards so one incident is not re-announced every tick.
func (r *EmergencyRepository) ListStalePending(cutoff time.Time) ([]models.Emergency, error) {
	var list []models.Emergency
	err := r.db.
		Where("status = ? AND hospital_id IS NULL AND updated_at < ?", models.StatusPending, cutoff).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// Touch bumps updated_at without changing anything else
func (r *EmergencyRepository) Touch(id uint) error {
	return r.db.Model(&models.Emergency{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}
