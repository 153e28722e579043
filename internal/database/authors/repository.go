// Package authors provides database operations for the author catalog.
package authors

import (
	"gorm.io/gorm"

	"libris/internal/entities"
)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new author row. Duplicate names are allowed; there is
// no uniqueness constraint on author names.
func (r *Repository) Create(author *entities.Author) error {
	return r.db.Create(author).Error
}

// GetByID retrieves an author by ID.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Search returns authors whose name contains query as a substring, in
// storage order. An empty query returns all authors.
func (r *Repository) Search(query string) ([]entities.AuthorRecord, error) {
	records := []entities.AuthorRecord{}
	q := r.db.Model(&entities.Author{}).Select("id, name, birth_year")
	if query != "" {
		q = q.Where("name LIKE ?", "%"+query+"%")
	}
	err := q.Scan(&records).Error
	return records, err
}
