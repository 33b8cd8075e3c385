package dto

import "canteen/internal/domain/models"

type CreateShopRequest struct {
	Name        string `json:"name"`
	AdminEmail  string `json:"adminEmail"`
	OpeningTime string `json:"openingTime"`
	ClosingTime string `json:"closingTime"`
	Image       string `json:"image,omitempty"`
}

// UpdateShopRequest carries optional fields; empty values keep the current
// ones.
type UpdateShopRequest struct {
	Name        string `json:"name,omitempty"`
	OpeningTime string `json:"openingTime,omitempty"`
	ClosingTime string `json:"closingTime,omitempty"`
	Image       string `json:"image,omitempty"`
}

type ShopStatusRequest struct {
	IsOpen *bool `json:"isOpen"`
}

// ShopWithAdmin augments a shop with its admin's email for super admin
// listings.
type ShopWithAdmin struct {
	models.Shop
	AdminEmail string `json:"adminEmail,omitempty"`
}

type RoleChangeRequest struct {
	Role   models.Role `json:"role"`
	ShopID string      `json:"shopId,omitempty"`
}
