package repository

import (
	"errors"
	"time"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"

	"gorm.io/gorm"
)

type PoliceRequestRepository struct {
	db *gorm.DB
}

func NewPoliceRequestRepo(db *gorm.DB) *PoliceRequestRepository {
	return &PoliceRequestRepository{db: db}
}

// Create inserts a clearance request. The unique index on emergency_id makes
// a second request for the same emergency fail as a conflict.
func (r *PoliceRequestRepository) Create(req *models.PoliceRequest) error {
	err := r.db.Create(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperrors.ConflictError{Resource: "police request for this emergency"}
	}
	return err
}

// GetByID retrieves a clearance request
func (r *PoliceRequestRepository) GetByID(id uint) (*models.PoliceRequest, error) {
	var req models.PoliceRequest
	err := r.db.Preload("Emergency").Preload("Hospital").First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListOpen returns requests that are not yet cleared, oldest first, with
// emergency and hospital context for the police dashboard
func (r *PoliceRequestRepository) ListOpen() ([]models.PoliceRequest, error) {
	var list []models.PoliceRequest
	err := r.db.
		Where("status IN ?", []models.PoliceRequestStatus{models.PoliceRequestPending, models.PoliceRequestAcknowledged}).
		Preload("Emergency").
		Preload("Hospital").
		Order("requested_at ASC").
		Find(&list).Error
	return list, err
}

// Acknowledge stamps acknowledged_at once and moves the request out of
// pending. Conditional so a double acknowledge is a no-op.
func (r *PoliceRequestRepository) Acknowledge(id uint) (bool, error) {
	res := r.db.Model(&models.PoliceRequest{}).
		Where("id = ? AND status = ?", id, models.PoliceRequestPending).
		Updates(map[string]interface{}{
			"status":          models.PoliceRequestAcknowledged,
			"acknowledged_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateNotes replaces the traffic notes on a request
func (r *PoliceRequestRepository) UpdateNotes(id uint, notes string) error {
	res := r.db.Model(&models.PoliceRequest{}).
		Where("id = ?", id).
		Update("traffic_notes", notes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetStatus moves a request to the given status
func (r *PoliceRequestRepository) SetStatus(id uint, status models.PoliceRequestStatus) error {
	res := r.db.Model(&models.PoliceRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
