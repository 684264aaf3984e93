package models

import (
	"fmt"
	"time"
)

// Inventory status values used by the report digest classification.
const (
	StatusAvailable             = "Available"
	StatusAvailablePendingTitle = "Available (Pending Title)"
	StatusRepairs               = "Repairs"
	StatusTrash                 = "Trash"
	StatusSentToNashville       = "Sent to Nashville"
	StatusDeposit               = "Deposit"
	StatusSold                  = "Sold"
)

// Financing categories for footer counts.
const (
	FinancingBHPH = "BHPH"
	FinancingCash = "Cash"
)

// Vehicle is one inventory unit.
type Vehicle struct {
	ID        int64     `json:"id"`
	StockNo   string    `json:"stock_no"`
	VIN       string    `json:"vin"`
	ModelYear int       `json:"model_year"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	Financing string    `json:"financing"`
	CreatedAt time.Time `json:"created_at"`
}

// Label renders the vehicle the way it reads in the shared digest.
func (v Vehicle) Label() string {
	return fmt.Sprintf("%d %s %s (%s)", v.ModelYear, v.Make, v.Model, v.StockNo)
}

// Sale is one completed deal.
type Sale struct {
	ID        int64     `json:"id"`
	VehicleID int64     `json:"vehicle_id"`
	Vehicle   Vehicle   `json:"vehicle"`
	Date      time.Time `json:"date"`
	Price     float64   `json:"price"`
	SaleType  string    `json:"sale_type"` // Retail or Wholesale
}

// StatusLog is one inventory status transition.
type StatusLog struct {
	ID             int64     `json:"id"`
	VehicleID      int64     `json:"vehicle_id"`
	Vehicle        Vehicle   `json:"vehicle"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangedAt      time.Time `json:"changed_at"`
}
