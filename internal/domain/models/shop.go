package models

type Shop struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AdminID     string `json:"adminId,omitempty"`
	IsOpen      bool   `json:"isOpen"`
	OpeningTime string `json:"openingTime"`
	ClosingTime string `json:"closingTime"`
	Image       string `json:"image,omitempty"`
}
