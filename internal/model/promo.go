package model

import "time"

// Promo is a promotion as exposed by the gateway.
type Promo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatorID      string    `json:"creatorId"`
	DiscountAmount float64   `json:"discountAmount"`
	Code           string    `json:"code"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PromoCreate carries the fields required to create a promo.
type PromoCreate struct {
	Name           string
	Description    string
	CreatorID      string
	DiscountAmount float64
	Code           string
}

// PromoUpdate carries the fields to change. A nil field is absent and keeps
// its stored value; a non-nil field is applied even if equal to the old value.
type PromoUpdate struct {
	Name           *string
	Description    *string
	DiscountAmount *float64
	Code           *string
}

// PromoPage is one page of the insertion-ordered promo collection.
type PromoPage struct {
	Items []Promo `json:"items"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Pages int     `json:"pages"`
}
