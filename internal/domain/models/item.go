package models

import "time"

// Item is one catalog entry. Quantity counts stock units; IsAvailable must be
// false whenever Quantity is zero.
type Item struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shopId"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	IsVeg       bool      `json:"isVeg"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"isAvailable"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
