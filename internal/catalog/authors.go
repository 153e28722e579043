// Package catalog implements the author and book catalog managers:
// create/search/update/delete over the two entity types, plus cover
// resolution and ownership annotation for book search results.
package catalog

import (
	"errors"
	"fmt"

	"libris/internal/database/authors"
	"libris/internal/entities"
)

var ErrNameRequired = errors.New("author name is required")

// AuthorCatalog manages author records.
type AuthorCatalog struct {
	repo *authors.Repository
}

// NewAuthorCatalog creates a new author catalog manager.
func NewAuthorCatalog(repo *authors.Repository) *AuthorCatalog {
	return &AuthorCatalog{repo: repo}
}

// AddAuthor inserts a new author. Duplicate names are permitted; callers
// that want one author per person must search first.
func (ac *AuthorCatalog) AddAuthor(name string, birthYear *int) error {
	if name == "" {
		return ErrNameRequired
	}

	author := &entities.Author{
		Name:      name,
		BirthYear: birthYear,
	}
	if err := ac.repo.Create(author); err != nil {
		return fmt.Errorf("failed to add author %q: %w", name, err)
	}
	return nil
}

// SearchAuthors returns authors whose name contains query as a
// substring; an empty query returns all authors in storage order.
func (ac *AuthorCatalog) SearchAuthors(query string) ([]entities.AuthorRecord, error) {
	records, err := ac.repo.Search(query)
	if err != nil {
		return nil, fmt.Errorf("failed to search authors: %w", err)
	}
	return records, nil
}
