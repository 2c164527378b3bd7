package models

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nome"`
	Description *string `json:"descricao"`
	OwnerID     string  `json:"-"` // Every query is already scoped by owner
}
