package dto

import "canteen/internal/domain/models"

type AddItemRequest struct {
	ShopID   string  `json:"shopId,omitempty"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	IsVeg    bool    `json:"isVeg"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
}

// UpdateItemRequest uses pointers so absent fields are left untouched. ID,
// shop and creation time are never updatable.
type UpdateItemRequest struct {
	Name     *string  `json:"name,omitempty"`
	Category *string  `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	IsVeg    *bool    `json:"isVeg,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
	Image    *string  `json:"image,omitempty"`
}

// MenuCategory groups a shop's available items for the public menu view.
type MenuCategory struct {
	CategoryName string        `json:"categoryName"`
	Items        []models.Item `json:"items"`
}

type ShopMenu struct {
	Shop       ShopRef        `json:"shop"`
	Categories []MenuCategory `json:"categories"`
}

type ShopRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
