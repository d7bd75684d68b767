package domain

import "time"

// AddOn is a rentable extra priced per day, such as a GPS unit or child seat.
type AddOn struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	PricePerDay float64   `bson:"price_per_day" json:"price_per_day"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// InsuranceTier is a coverage level priced per day.
type InsuranceTier struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Coverage    string    `bson:"coverage" json:"coverage"`
	PricePerDay float64   `bson:"price_per_day" json:"price_per_day"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
