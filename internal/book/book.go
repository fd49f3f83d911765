package book

import (
	"fmt"
	"strings"
)

// Book is a single record in the user's collection. The id is assigned by
// the store; the engine never invents one. A Year of 0 means "unknown".
type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Genre      string `json:"genre"`
	Year       int    `json:"year"`
	CoverURL   string `json:"coverUrl,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
}

// Label renders the book the way chat replies reference it.
func (b Book) Label() string {
	return fmt.Sprintf("%q by %s (%d)", b.Title, b.Author, b.Year)
}

// SameEdition reports whether two books describe the same edition:
// equal title and author (case-insensitive) and the same year.
func (b Book) SameEdition(other Book) bool {
	return strings.EqualFold(b.Title, other.Title) &&
		strings.EqualFold(b.Author, other.Author) &&
		b.Year == other.Year
}
