package models

import "time"

// EmergencyLevel indicates reported severity of an incident
type EmergencyLevel string

// EmergencyStatus tracks an incident through its lifecycle
type EmergencyStatus string

const (
	LevelLow      EmergencyLevel = "low"
	LevelMedium   EmergencyLevel = "medium"
	LevelHigh     EmergencyLevel = "high"
	LevelCritical EmergencyLevel = "critical"

	StatusPending      EmergencyStatus = "pending"
	StatusAcknowledged EmergencyStatus = "acknowledged"
	StatusDispatched   EmergencyStatus = "dispatched"
	StatusInProgress   EmergencyStatus = "in_progress"
	StatusResolved     EmergencyStatus = "resolved"
	StatusCancelled    EmergencyStatus = "cancelled"
)

// ValidLevel reports whether l is a known emergency level.
func ValidLevel(l EmergencyLevel) bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known emergency status.
func ValidStatus(s EmergencyStatus) bool {
	switch s {
	case StatusPending, StatusAcknowledged, StatusDispatched,
		StatusInProgress, StatusResolved, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status counts as an active mission for an
// assigned ambulance.
func (s EmergencyStatus) Active() bool {
	return s == StatusDispatched || s == StatusInProgress
}

// Terminal reports whether no further transitions are allowed from s.
func (s EmergencyStatus) Terminal() bool {
	return s == StatusResolved || s == StatusCancelled
}

// Emergency represents one SOS incident tracked from report to resolution.
// Hospital and ambulance assignment fields are denormalized snapshots so the
// patient tracking view needs no joins.
type Emergency struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReportCode  string          `gorm:"size:36;uniqueIndex;not null" json:"report_code"`
	PhoneNumber string          `gorm:"size:20;not null" json:"phone_number"`
	Name        string          `gorm:"size:255" json:"name"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Level       EmergencyLevel  `gorm:"column:emergency_level;type:enum('low','medium','high','critical');default:'medium'" json:"emergency_level"`
	Status      EmergencyStatus `gorm:"type:enum('pending','acknowledged','dispatched','in_progress','resolved','cancelled');default:'pending';index" json:"status"`

	// Claim snapshot, set exactly once on pending -> acknowledged
	HospitalID          *uint    `gorm:"index" json:"hospital_id"`
	AssignedHospitalName string  `gorm:"size:255" json:"assigned_hospital_name,omitempty"`
	AssignedHospitalLat  *float64 `json:"assigned_hospital_lat,omitempty"`
	AssignedHospitalLng  *float64 `json:"assigned_hospital_lng,omitempty"`

	// Dispatch snapshot
	AssignedAmbulanceID     *uint  `gorm:"index" json:"assigned_ambulance_id,omitempty"`
	AssignedAmbulanceNumber string `gorm:"size:50" json:"assigned_ambulance_number,omitempty"`
	DriverName              string `gorm:"size:255" json:"driver_name,omitempty"`
	DriverPhone             string `gorm:"size:20" json:"driver_phone,omitempty"`

	Description       string `gorm:"type:text" json:"description,omitempty"`
	BloodGroup        string `gorm:"size:10" json:"blood_group,omitempty"`
	Allergies         string `gorm:"type:text" json:"allergies,omitempty"`
	MedicalConditions string `gorm:"type:text" json:"medical_conditions,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for Emergency model
func (Emergency) TableName() string {
	return "sos_emergencies"
}
