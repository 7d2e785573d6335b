package models

type Image struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Path      string `json:"path"`
}
