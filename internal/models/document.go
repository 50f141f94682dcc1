package models

import "time"

// Document представляет запись о загруженном документе из ответа
// GET /api/documents. Распознавание и классификация выполняются бэкендом.
type Document struct {
	ID           int       `json:"id"`
	Filename     string    `json:"filename"`
	DocumentType string    `json:"document_type,omitempty"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
