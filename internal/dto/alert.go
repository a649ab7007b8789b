package dto

import "github.com/shopspring/decimal"

// AlertPayload is the denormalized product snapshot an emitted notification
// keeps, so the alert stays meaningful if the product is later edited or
// deleted. DaysLeft is only meaningful for expiry alerts.
type AlertPayload struct {
	ProductID   *int
	ProductName string
	Quantity    *decimal.Decimal
	Unit        string
	Threshold   *decimal.Decimal
	DaysLeft    int
}
