package models

type Category struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}
