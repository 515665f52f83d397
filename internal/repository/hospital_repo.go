package repository

import (
	"errors"
	"math"
	"time"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"

	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// GetAllActive retrieves all active hospitals
func (r *HospitalRepository) GetAllActive() ([]models.Hospital, error) {
	var hospitals []models.Hospital
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&hospitals).Error
	return hospitals, err
}

// GetByID retrieves an active hospital by ID
func (r *HospitalRepository) GetByID(id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &hospital, nil
}

// GetByUsername retrieves an active hospital by its login username
func (r *HospitalRepository) GetByUsername(username string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.Where("username = ? AND is_active = ?", username, true).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &hospital, nil
}

// FindWithinRadius retrieves active hospitals inside a bounding box of
// radiusKm around the given coordinates. The box is a cheap SQL pre-filter;
// exact great-circle distances are computed by the scorer. Results keep a
// deterministic id order so repeated rankings are stable.
func (r *HospitalRepository) FindWithinRadius(lat, lng, radiusKm float64) ([]models.Hospital, error) {
	// One degree of latitude is ~111 km; longitude shrinks with latitude.
	latDelta := radiusKm / 111.0
	lngDelta := radiusKm / (111.0 * math.Max(0.01, math.Cos(lat*math.Pi/180)))

	var hospitals []models.Hospital
	err := r.db.
		Where("is_active = ?", true).
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
		Where("longitude BETWEEN ? AND ?", lng-lngDelta, lng+lngDelta).
		Order("id ASC").
		Find(&hospitals).Error
	return hospitals, err
}

// Create creates a new hospital
func (r *HospitalRepository) Create(hospital *models.Hospital) error {
	return r.db.Create(hospital).Error
}

// Update updates an existing hospital
func (r *HospitalRepository) Update(hospital *models.Hospital) error {
	return r.db.Save(hospital).Error
}

// UpdateBedOccupancy sets the occupied bed count for a hospital
func (r *HospitalRepository) UpdateBedOccupancy(id uint, occupied int) error {
	res := r.db.Model(&models.Hospital{}).
		Where("id = ?", id).
		Update("occupied_beds", occupied)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// TouchLastLogin stamps the hospital's last successful login
func (r *HospitalRepository) TouchLastLogin(id uint) error {
	return r.db.Model(&models.Hospital{}).
		Where("id = ?", id).
		Update("last_login", time.Now().UTC()).Error
}

// SoftDelete deactivates a hospital
func (r *HospitalRepository) SoftDelete(id uint) error {
	return r.db.Model(&models.Hospital{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
