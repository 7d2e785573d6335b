package models

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Products  []Product `json:"products,omitempty"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type CategoryUpdate struct {
	Name Optional[string] `json:"name"`
}

// CategoryRef is the `{"id": n}` shape used to point a product at its category.
type CategoryRef struct {
	ID *int64 `json:"id"`
}
