package catalog

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"libris/internal/covers"
	"libris/internal/database"
	"libris/internal/database/books"
	"libris/internal/entities"
)

var (
	ErrTitleRequired = errors.New("book title is required")
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")
)

// BookCatalog manages book records: create, update, delete and search,
// including cover image storage and resolution.
type BookCatalog struct {
	repo   *books.Repository
	covers *covers.Cache
}

// NewBookCatalog creates a new book catalog manager.
func NewBookCatalog(repo *books.Repository, coverCache *covers.Cache) *BookCatalog {
	return &BookCatalog{repo: repo, covers: coverCache}
}

// AddBook inserts a new book. coverSource, when non-empty, is a local
// file reference (optionally file://-prefixed) whose bytes become the
// stored cover blob; an unreadable cover file fails the whole operation
// rather than silently storing a null cover. A dangling authorID is
// accepted as-is.
func (bc *BookCatalog) AddBook(title, isbn string, publishedYear *int, coverSource string, authorID *uint, userID uint) error {
	if title == "" {
		return ErrTitleRequired
	}

	cover, err := readCoverSource(coverSource)
	if err != nil {
		return err
	}

	book := &entities.Book{
		Title:         title,
		ISBN:          optionalString(isbn),
		PublishedYear: publishedYear,
		CoverImage:    cover,
		AuthorID:      authorID,
	}
	if userID != 0 {
		book.AddedBy = &userID
	}

	if err := bc.repo.Create(book); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("failed to add book %q: %w", title, err)
	}
	return nil
}

// UpdateBook overwrites a book's fields and refreshes its update
// timestamp. When coverSource is empty the stored cover blob is left
// untouched; updating a non-existent id affects zero rows and succeeds.
func (bc *BookCatalog) UpdateBook(bookID uint, title, isbn string, publishedYear *int, coverSource string, authorID *uint) error {
	if title == "" {
		return ErrTitleRequired
	}

	cover, err := readCoverSource(coverSource)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"title":          title,
		"isbn":           optionalString(isbn),
		"published_year": publishedYear,
		"author_id":      authorID,
	}
	if len(cover) > 0 {
		fields["cover_image"] = cover
		// The old blob's cached file is stale now
		if err := bc.covers.Invalidate(bookID); err != nil {
			log.Printf("failed to invalidate cover cache for book %d: %v", bookID, err)
		}
	}

	if err := bc.repo.Update(bookID, fields); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("failed to update book %d: %w", bookID, err)
	}
	return nil
}

// DeleteBook removes a book by id. A non-existent id is a no-op
// success.
func (bc *BookCatalog) DeleteBook(bookID uint) error {
	if err := bc.repo.Delete(bookID); err != nil {
		return fmt.Errorf("failed to delete book %d: %w", bookID, err)
	}
	if err := bc.covers.Invalidate(bookID); err != nil {
		log.Printf("failed to invalidate cover cache for book %d: %v", bookID, err)
	}
	return nil
}

// SearchBooks returns books whose title or isbn contains query as a
// substring. Author name and adding user's username come from left
// joins and are absent for dangling references. AddedByAuthor is true
// iff the row's added_by id equals currentUserID, compared as numeric
// ids; currentUserID 0 means anonymous and never matches.
func (bc *BookCatalog) SearchBooks(query string, currentUserID uint) ([]entities.BookSearchResult, error) {
	rows, err := bc.repo.Search(query)
	if err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	results := make([]entities.BookSearchResult, 0, len(rows))
	for _, row := range rows {
		coverPath, err := bc.covers.Materialize(row.ID, row.CoverImage)
		if err != nil {
			// A cover that cannot be written to disk degrades to "no
			// cover" rather than failing the whole search
			log.Printf("failed to materialize cover for book %d: %v", row.ID, err)
			coverPath = ""
		}

		results = append(results, entities.BookSearchResult{
			ID:            row.ID,
			Title:         row.Title,
			ISBN:          row.ISBN,
			PublishedYear: row.PublishedYear,
			AuthorName:    row.AuthorName,
			AddedByUser:   row.AddedByUser,
			AddedByAuthor: currentUserID != 0 && row.AddedByID != nil && *row.AddedByID == currentUserID,
			CoverPath:     coverPath,
		})
	}
	return results, nil
}

// CoverPath materializes and returns the cover file path for a single
// book, or "" when the book has no cover.
func (bc *BookCatalog) CoverPath(bookID uint) (string, error) {
	book, err := bc.repo.GetByID(bookID)
	if err != nil {
		return "", err
	}
	return bc.covers.Materialize(book.ID, book.CoverImage)
}

// SweepCovers drops cached cover files for books that no longer store a
// cover blob. Returns the number of files removed.
func (bc *BookCatalog) SweepCovers() (int, error) {
	ids, err := bc.repo.CoverBookIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list cover ids: %w", err)
	}
	live := make(map[uint]bool, len(ids))
	for _, id := range ids {
		live[id] = true
	}
	return bc.covers.Sweep(live)
}

// readCoverSource reads the cover bytes from a local file reference.
// Returns nil for an empty source. A missing or unreadable file is an
// operator mistake and surfaces as an error, never as a silent nil.
func readCoverSource(source string) ([]byte, error) {
	if source == "" {
		return nil, nil
	}
	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover image %s: %w", path, err)
	}
	return data, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
