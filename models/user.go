package models

type User struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        *string `json:"email,omitempty"`
	PasswordHash string  `json:"-"` // Not exposed in API responses
}
