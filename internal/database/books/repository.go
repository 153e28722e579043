// Package books provides database operations for the book catalog.
//
// Search returns flat projection rows rather than entities: the catalog
// layer resolves cover blobs and ownership flags before anything reaches
// the presentation layer.
package books

import (
	"gorm.io/gorm"

	"libris/internal/entities"
)

// SearchRow is one raw row of a catalog search: book columns plus the
// left-joined author name and adding user's username. AuthorName and
// AddedByUser are nil when the reference is null or dangling.
type SearchRow struct {
	ID            uint
	Title         string
	ISBN          *string
	PublishedYear *int
	CoverImage    []byte
	AuthorName    *string
	AddedByUser   *string
	AddedByID     *uint
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book row. A UNIQUE violation on isbn is returned
// as-is so the caller can classify it.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetByID retrieves a book by ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Update applies the given column values to the book with the given id
// and refreshes updated_at. Updating a non-existent id affects zero rows
// and is not an error.
func (r *Repository) Update(id uint, fields map[string]any) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a book by id. Deleting a non-existent id is a no-op.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// Search returns books whose title or isbn contains query as a
// substring, with author name and adding user left-joined in. An empty
// query matches every row.
func (r *Repository) Search(query string) ([]SearchRow, error) {
	rows := []SearchRow{}
	pattern := "%" + query + "%"
	err := r.db.Table("books").
		Select("books.id, books.title, books.isbn, books.published_year, books.cover_image, " +
			"authors.name AS author_name, users.username AS added_by_user, books.added_by AS added_by_id").
		Joins("LEFT JOIN authors ON books.author_id = authors.id").
		Joins("LEFT JOIN users ON books.added_by = users.id").
		Where("books.title LIKE ? OR books.isbn LIKE ?", pattern, pattern).
		Order("books.id").
		Scan(&rows).Error
	return rows, err
}

// CoverBookIDs returns the ids of all books that currently store a cover
// blob. Used by the cover cache sweep.
func (r *Repository) CoverBookIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.Book{}).
		Where("cover_image IS NOT NULL").
		Pluck("id", &ids).Error
	return ids, err
}
