package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"categoryId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Category *Category `json:"category,omitempty"`
	Images   []Image   `json:"images"`
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0,lte=99999999.99"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Category    *CategoryRef    `json:"category"`
}

type ProductUpdate struct {
	Name        Optional[string]          `json:"name"`
	Description Optional[string]          `json:"description"`
	Price       Optional[decimal.Decimal] `json:"price"`
	Quantity    Optional[int]             `json:"quantity"`
	Category    Optional[CategoryRef]     `json:"category"`
}
