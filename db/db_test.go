package db_test

import (
	"os"
	"path/filepath"
	"testing"

	"atelier/db"

	"github.com/stretchr/testify/assert"
)

// TestInitDB tests the initialization of the database.
// It sets up a temporary directory, initializes the database, and checks if
// the database file is created successfully.
func TestInitDB(t *testing.T) {
	tempDir := t.TempDir()
	os.Setenv("HOME", tempDir)
	db.Path = filepath.Join(tempDir, ".atelier/atelier.db")
	err := db.InitDB()
	assert.NoError(t, err, "InitDB should not return an error")

	// Check if the database file was created
	_, statErr := os.Stat(db.Path)
	assert.NoError(t, statErr, "Database file should exist")

	// Close the database to release the file handle
	closeErr := db.CloseDB()
	assert.NoError(t, closeErr, "CloseDB should not return an error")
}

func TestGetDB_ReturnsHandleAfterInit(t *testing.T) {
	tempDir := t.TempDir()
	db.Path = filepath.Join(tempDir, "atelier.db")
	assert.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })

	assert.NotNil(t, db.GetDB(), "GetDB should return the open handle")
}
