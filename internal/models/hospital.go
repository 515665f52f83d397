package models

import (
	"strings"
	"time"
)

// Hospital represents a registered medical facility that can claim
// emergencies and dispatch ambulances
type Hospital struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Name         string   `gorm:"size:255;not null" json:"name"`
	Username     string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Phone        string   `gorm:"size:20" json:"phone,omitempty"`
	Address      string   `gorm:"type:text" json:"address,omitempty"`
	TotalBeds    int      `gorm:"default:0" json:"total_beds"`
	OccupiedBeds int      `gorm:"default:0" json:"occupied_beds"`
	// Comma-separated list, e.g. "Cardiology,Trauma". Kept flat because MySQL
	// has no native array column.
	Specializations string     `gorm:"type:text" json:"specializations"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	CreatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

// SpecializationList splits the stored specializations into a trimmed slice.
// Empty entries are dropped.
func (h *Hospital) SpecializationList() []string {
	if h.Specializations == "" {
		return nil
	}
	parts := strings.Split(h.Specializations, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			list = append(list, s)
		}
	}
	return list
}

// HasSpecialization reports whether the hospital lists the given
// specialization (case-insensitive).
func (h *Hospital) HasSpecialization(name string) bool {
	for _, s := range h.SpecializationList() {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// FreeBeds returns the number of unoccupied beds, never negative.
func (h *Hospital) FreeBeds() int {
	free := h.TotalBeds - h.OccupiedBeds
	if free < 0 {
		return 0
	}
	return free
}
