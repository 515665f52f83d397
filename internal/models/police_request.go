package models

import "time"

// PoliceRequestStatus tracks a traffic-clearance request
type PoliceRequestStatus string

const (
	PoliceRequestPending      PoliceRequestStatus = "pending"
	PoliceRequestAcknowledged PoliceRequestStatus = "acknowledged"
	PoliceRequestCleared      PoliceRequestStatus = "cleared"
)

// PoliceRequest links one emergency to one hospital for traffic
// coordination. The unique index on EmergencyID enforces the one-to-one
// relationship at the database level.
type PoliceRequest struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	EmergencyID    uint                `gorm:"not null;uniqueIndex" json:"emergency_id"`
	HospitalID     uint                `gorm:"not null;index" json:"hospital_id"`
	Status         PoliceRequestStatus `gorm:"type:enum('pending','acknowledged','cleared');default:'pending'" json:"status"`
	TrafficNotes   string              `gorm:"type:text" json:"traffic_notes,omitempty"`
	RequestedAt    time.Time           `gorm:"default:CURRENT_TIMESTAMP" json:"requested_at"`
	AcknowledgedAt *time.Time          `json:"acknowledged_at,omitempty"`
	UpdatedAt      time.Time           `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	Emergency Emergency `gorm:"foreignKey:EmergencyID" json:"emergency,omitempty"`
	Hospital  Hospital  `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for PoliceRequest model
func (PoliceRequest) TableName() string {
	return "police_requests"
}
