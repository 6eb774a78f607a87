// Package promorpc defines the RPC contract between the gateway and the promo
// service: message types, the JSON wire codec and the gRPC service descriptor.
package promorpc

// PromoRequest creates a promo (all fields but ID) or addresses one by ID.
type PromoRequest struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name,omitempty"`
	Description    string  `json:"description,omitempty"`
	CreatorID      string  `json:"creator_id,omitempty"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	Code           string  `json:"code,omitempty"`
}

// PromoResponse is a stored promo. Timestamps are ISO-8601 (RFC 3339) strings.
type PromoResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	CreatorID      string  `json:"creator_id"`
	DiscountAmount float64 `json:"discount_amount"`
	Code           string  `json:"code"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// PromoListRequest selects a 1-based page of the collection.
type PromoListRequest struct {
	Page  int32 `json:"page"`
	Limit int32 `json:"limit"`
}

// PromoListResponse is one page plus totals over the whole collection.
type PromoListResponse struct {
	Items []*PromoResponse `json:"items"`
	Total int32            `json:"total"`
	Page  int32            `json:"page"`
	Limit int32            `json:"limit"`
	Pages int32            `json:"pages"`
}

// PromoUpdateRequest changes only the fields that are non-nil.
type PromoUpdateRequest struct {
	ID             string   `json:"id"`
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	DiscountAmount *float64 `json:"discount_amount,omitempty"`
	Code           *string  `json:"code,omitempty"`
}

// PromoDeleteRequest addresses the promo to delete.
type PromoDeleteRequest struct {
	ID string `json:"id"`
}

// Empty is the reply of calls that return nothing.
type Empty struct{}
