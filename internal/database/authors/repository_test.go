package authors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"libris/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_authors_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Author{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func intPtr(v int) *int { return &v }

func TestRepository_Create(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	author := &entities.Author{Name: "J. Tolkien", BirthYear: intPtr(1892)}
	require.NoError(t, repo.Create(author))
	assert.NotZero(t, author.ID)

	got, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "J. Tolkien", got.Name)
	require.NotNil(t, got.BirthYear)
	assert.Equal(t, 1892, *got.BirthYear)
}

func TestRepository_DuplicateNamesAllowed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.Author{Name: "John Smith"}))
	require.NoError(t, repo.Create(&entities.Author{Name: "John Smith"}))

	records, err := repo.Search("John Smith")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRepository_SearchEmptyQueryReturnsAll(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.Author{Name: "Ursula Le Guin", BirthYear: intPtr(1929)}))
	require.NoError(t, repo.Create(&entities.Author{Name: "Stanislaw Lem", BirthYear: intPtr(1921)}))
	require.NoError(t, repo.Create(&entities.Author{Name: "Anonymous"}))

	records, err := repo.Search("")
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Storage order
	assert.Equal(t, "Ursula Le Guin", records[0].Name)
	assert.Equal(t, "Stanislaw Lem", records[1].Name)
	assert.Nil(t, records[2].BirthYear)
}

func TestRepository_SearchSubstring(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.Author{Name: "Ursula Le Guin"}))
	require.NoError(t, repo.Create(&entities.Author{Name: "Stanislaw Lem"}))

	records, err := repo.Search("Le Guin")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ursula Le Guin", records[0].Name)

	records, err = repo.Search("zzz")
	require.NoError(t, err)
	assert.Empty(t, records)
}
