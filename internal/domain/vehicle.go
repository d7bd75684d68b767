package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable    VehicleStatus = "AVAILABLE"
	VehicleStatusReserved     VehicleStatus = "RESERVED"
	VehicleStatusPickedUp     VehicleStatus = "PICKED_UP"
	VehicleStatusOutOfService VehicleStatus = "OUT_OF_SERVICE"
)

type Vehicle struct {
	ID          string        `bson:"_id" json:"id"`
	Plate       string        `bson:"plate" json:"plate"`
	Brand       string        `bson:"brand" json:"brand"`
	Model       string        `bson:"model" json:"model"`
	Year        int           `bson:"year" json:"year"`
	Class       string        `bson:"class" json:"class"`
	PricePerDay float64       `bson:"price_per_day" json:"price_per_day"`
	Mileage     float64       `bson:"mileage" json:"mileage"`
	BranchID    string        `bson:"branch_id" json:"branch_id"`
	Status      VehicleStatus `bson:"status" json:"status"`
	// Service history is embedded; a vehicle rarely accumulates enough
	// records to justify a separate collection.
	MaintenanceRecords []MaintenanceRecord `bson:"maintenance_records,omitempty" json:"maintenance_records,omitempty"`
	CreatedAt          time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `bson:"updated_at" json:"updated_at"`
}

// MaintenanceRecord captures one service entry in a vehicle's history.
type MaintenanceRecord struct {
	ID          string     `bson:"id" json:"id"`
	ScheduledBy string     `bson:"scheduled_by" json:"scheduled_by"`
	ServiceDate time.Time  `bson:"service_date" json:"service_date"`
	Odometer    float64    `bson:"odometer" json:"odometer"`
	Note        string     `bson:"note" json:"note"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
