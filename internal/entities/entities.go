package entities

import (
	"time"
)

// User is an account that can sign in and add books to the catalog.
// Password holds the salted bcrypt digest, never the plaintext.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  []byte    `gorm:"not null" json:"-"`
	Firstname string    `gorm:"size:100;not null" json:"firstname"`
	Lastname  string    `gorm:"size:100;not null" json:"lastname"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:256;not null" json:"name"`
	BirthYear *int      `json:"birth_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book references its author and the adding user by plain ids. Both
// references are informational: no cascade, and a dangling author_id is
// tolerated (the joined author name comes back null).
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"index;size:512;not null" json:"title"`
	ISBN          *string   `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`
	PublishedYear *int      `json:"published_year,omitempty"`
	CoverImage    []byte    `gorm:"column:cover_image" json:"-"`
	AuthorID      *uint     `gorm:"index" json:"author_id,omitempty"`
	AddedBy       *uint     `gorm:"index" json:"added_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserIdentity is the session payload for a signed-in user. It is what
// managers receive instead of reaching into ambient state.
type UserIdentity struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// AuthorRecord is the search projection for authors.
type AuthorRecord struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year,omitempty"`
}

// BookSearchResult is one row of a catalog search: book columns plus the
// left-joined author name and adding user's username (both absent when
// the reference is null or dangling). CoverPath points at the cached
// cover file when the book has one.
type BookSearchResult struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	ISBN          *string `json:"isbn,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
	AuthorName    *string `json:"author_name,omitempty"`
	AddedByUser   *string `json:"added_by_user,omitempty"`
	AddedByAuthor bool    `json:"added_by_author"`
	CoverPath     string  `json:"cover_path,omitempty"`
}
