package entity

import "time"

// Product is a catalog item. Images hold object paths in the image store.
type Product struct {
	ID          string
	Name        string
	Price       float64
	Colors      []string
	Description string
	Category    string
	AvailableOn time.Time
	Images      []string
	Stock       int
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
