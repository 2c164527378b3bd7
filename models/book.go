package models

// Book is a catalogued book owned by a single user. Date and timestamp
// columns are carried as plain strings so they serialize exactly as the
// API contract requires (string or null).
type Book struct {
	ID               int64   `json:"id"`
	ISBN             string  `json:"isbn"`
	Title            string  `json:"titulo"`
	Authors          string  `json:"autores"`
	Genre            *string `json:"genero"`
	Publisher        *string `json:"editora"`
	PublicationYear  *int    `json:"ano_publicacao"`
	PageCount        *int    `json:"numero_paginas"`
	CoverURL         *string `json:"capa_url"`
	PhysicalLocation *string `json:"localizacao_fisica"`
	PersonalNotes    *string `json:"notas_pessoais"`
	Language         *string `json:"idioma"`
	ReadingStartDate *string `json:"data_inicio_leitura"`
	ReadingEndDate   *string `json:"data_fim_leitura"`
	RegisteredAt     string  `json:"data_cadastro"`
	OwnerID          string  `json:"id_usuario"`
}

// BookPreview is a non-persisted normalization of external metadata,
// returned for manual confirmation before the book is stored. The lookup
// route is public, so user-specific fields are always null.
type BookPreview struct {
	ISBN             string  `json:"isbn"`
	Title            string  `json:"titulo"`
	Authors          string  `json:"autores"`
	Genre            *string `json:"genero"`
	Publisher        *string `json:"editora"`
	PublicationYear  *int    `json:"ano_publicacao"`
	PageCount        *int    `json:"numero_paginas"`
	CoverURL         *string `json:"capa_url"`
	Language         string  `json:"idioma"`
	PhysicalLocation *string `json:"localizacao_fisica"`
	PersonalNotes    *string `json:"notas_pessoais"`
	ReadingStartDate *string `json:"data_inicio_leitura"`
	ReadingEndDate   *string `json:"data_fim_leitura"`
	OwnerID          *string `json:"id_usuario"`
}
