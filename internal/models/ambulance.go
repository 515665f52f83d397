package models

import "time"

// Ambulance represents a vehicle owned by a hospital. IsAvailable is a
// dispatch-UI hint, not a lock: one ambulance may serve several active
// emergencies at once.
type Ambulance struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	HospitalID    uint       `gorm:"not null;index;uniqueIndex:idx_hospital_vehicle" json:"hospital_id"`
	VehicleNumber string     `gorm:"size:50;not null;uniqueIndex:idx_hospital_vehicle" json:"vehicle_number"`
	DriverName    string     `gorm:"size:255" json:"driver_name"`
	DriverPhone   string     `gorm:"size:20" json:"driver_phone"`
	IsAvailable   bool       `gorm:"default:true" json:"is_available"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	LastUpdated   *time.Time `json:"last_updated"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Hospital Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for Ambulance model
func (Ambulance) TableName() string {
	return "ambulances"
}

// AmbulanceWithMissions is the fleet-dashboard view of a vehicle.
type AmbulanceWithMissions struct {
	Ambulance
	ActiveMissions int `json:"active_missions"`
}
