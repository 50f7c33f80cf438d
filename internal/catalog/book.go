// Package catalog owns the book documents: a Redis-hash-backed store keyed by
// book ID, plus the cached rendering of the index listing page.
package catalog

import (
	"encoding/json"
	"fmt"
)

// Book is a single document in the library. Books are created during
// ingestion and immutable afterwards; Content holds the fully rendered page
// served for GET /books/<id>.
type Book struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	PublicationDate string   `json:"publication_date"`
	Genres          []string `json:"genres"`
	Summary         string   `json:"summary"`
	Content         []byte   `json:"content"`
}

// encode serialises a book for storage as a hash field value.
func (b *Book) encode() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encoding book %s: %w", b.ID, err)
	}
	return data, nil
}

// decodeBook deserialises a stored hash field value.
func decodeBook(data []byte) (*Book, error) {
	var b Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding book record: %w", err)
	}
	return &b, nil
}
