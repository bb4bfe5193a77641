package models

// Media references an uploaded file.
type Media struct {
	ID   int    `json:"id" validate:"required"`
	URL  string `json:"url" validate:"required"`
	Name string `json:"name,omitempty"`
}
