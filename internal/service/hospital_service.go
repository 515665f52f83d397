package service

import (
	"fmt"
	"strings"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/pkg/utils"
)

// RegisterHospitalInput is the admin payload for onboarding a facility.
type RegisterHospitalInput struct {
	Name            string   `json:"name"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Phone           string   `json:"phone"`
	Address         string   `json:"address"`
	TotalBeds       int      `json:"total_beds"`
	OccupiedBeds    int      `json:"occupied_beds"`
	Specializations string   `json:"specializations"`
}

type HospitalService struct {
	hospitalStore HospitalStore
	auditStore    AuditStore
}

func NewHospitalService(hospitalStore HospitalStore, auditStore AuditStore) *HospitalService {
	return &HospitalService{
		hospitalStore: hospitalStore,
		auditStore:    auditStore,
	}
}

// Register onboards a hospital (admin only). Bed counts are validated at
// write time; the scorer additionally clamps at read time.
func (s *HospitalService) Register(input RegisterHospitalInput, adminID *uint) (*models.Hospital, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidation("name", "required")
	}
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, apperrors.NewValidation("username", "username and password are required")
	}
	if input.TotalBeds < 0 || input.OccupiedBeds < 0 {
		return nil, apperrors.NewValidation("beds", "bed counts cannot be negative")
	}
	if input.OccupiedBeds > input.TotalBeds {
		return nil, apperrors.NewValidation("occupied_beds", "cannot exceed total_beds")
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	h := &models.Hospital{
		Name:            strings.TrimSpace(input.Name),
		Username:        strings.TrimSpace(input.Username),
		PasswordHash:    passwordHash,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Phone:           input.Phone,
		Address:         input.Address,
		TotalBeds:       input.TotalBeds,
		OccupiedBeds:    input.OccupiedBeds,
		Specializations: input.Specializations,
		IsActive:        true,
	}
	if err := s.hospitalStore.Create(h); err != nil {
		return nil, fmt.Errorf("failed to create hospital: %w", err)
	}

	_ = s.auditStore.CreateAuditLog(adminID, "hospital_register",
		fmt.Sprintf("Registered hospital %s", h.Name))
	return h, nil
}

// UpdateBeds sets the occupied bed count with the write-time invariant
// occupied <= total.
func (s *HospitalService) UpdateBeds(hospitalID uint, occupied int) (*models.Hospital, error) {
	if occupied < 0 {
		return nil, apperrors.NewValidation("occupied_beds", "cannot be negative")
	}

	h, err := s.hospitalStore.GetByID(hospitalID)
	if err != nil {
		return nil, err
	}
	if occupied > h.TotalBeds {
		return nil, apperrors.NewValidation("occupied_beds",
			fmt.Sprintf("cannot exceed total_beds (%d)", h.TotalBeds))
	}

	if err := s.hospitalStore.UpdateBedOccupancy(hospitalID, occupied); err != nil {
		return nil, err
	}
	h.OccupiedBeds = occupied
	return h, nil
}

// Get returns one active hospital.
func (s *HospitalService) Get(hospitalID uint) (*models.Hospital, error) {
	return s.hospitalStore.GetByID(hospitalID)
}

// ListActive returns all active hospitals.
func (s *HospitalService) ListActive() ([]models.Hospital, error) {
	return s.hospitalStore.GetAllActive()
}

// Deactivate soft deletes a hospital (admin only).
func (s *HospitalService) Deactivate(hospitalID uint, adminID *uint) error {
	h, err := s.hospitalStore.GetByID(hospitalID)
	if err != nil {
		return err
	}
	if err := s.hospitalStore.SoftDelete(hospitalID); err != nil {
		return fmt.Errorf("failed to deactivate hospital: %w", err)
	}
	_ = s.auditStore.CreateAuditLog(adminID, "hospital_deactivate",
		fmt.Sprintf("Deactivated hospital %s", h.Name))
	return nil
}
