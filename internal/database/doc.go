// Package database provides the data access layer for the application.
//
// The layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and schema migration
//	├── users/           # Account rows
//	├── authors/         # Author catalog rows
//	└── books/           # Book catalog rows and search
//
// Each sub-package provides a Repository type with domain-specific
// operations over a shared *gorm.DB:
//
//	db, err := database.NewDatabase("./libris.db")
//	booksRepo := books.NewRepository(db.DB)
//	results, err := booksRepo.Search("Hobbit")
//
// All queries use parameter binding; no SQL is ever built by string
// interpolation of caller input.
package database
