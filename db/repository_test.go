package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"atelier/db"

	"github.com/stretchr/testify/require"
)

func TestTaskRepositoryBasicCRUD(t *testing.T) {
	temp := t.TempDir()
	db.Path = filepath.Join(temp, "atelier.db")
	require.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })

	repo := db.NewTaskRepository(db.GetDB())
	ctx := context.Background()

	// Put
	require.NoError(t, repo.Put(ctx, db.Task{ID: "66f0a1", Title: "Homecoming banner", Status: "open", Data: "{}"}))

	// GetByID
	task, err := repo.GetByID(ctx, "66f0a1")
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Equal(t, "Homecoming banner", task.Title)

	// Upsert overwrites the same row
	require.NoError(t, repo.Put(ctx, db.Task{ID: "66f0a1", Title: "Homecoming banner", Status: "in_progress", Data: "{}"}))
	task, err = repo.GetByID(ctx, "66f0a1")
	require.NoError(t, err)
	require.Equal(t, "in_progress", task.Status)

	// List
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	// Search
	res, err := repo.SearchByTitle(ctx, "banner")
	require.NoError(t, err)
	require.Len(t, res, 1)

	// Clear
	require.NoError(t, repo.Clear(ctx))
	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 0)
}

func TestTaskRepositoryGetByID_Missing(t *testing.T) {
	temp := t.TempDir()
	db.Path = filepath.Join(temp, "atelier.db")
	require.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })

	repo := db.NewTaskRepository(db.GetDB())

	task, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, task)
}

func TestSessionRepositoryUpsertAndGet(t *testing.T) {
	temp := t.TempDir()
	db.Path = filepath.Join(temp, "atelier.db")
	require.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })

	repo := db.NewSessionRepository(db.GetDB())
	ctx := context.Background()

	// Initially empty
	session, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, session)

	// Upsert
	require.NoError(t, repo.Upsert(ctx, &db.Session{
		AccessToken:   "tok-A",
		RefreshCookie: "cookie-1",
		UserName:      "dana",
		UserRole:      "designer",
	}))

	// Retrieve
	session, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, "tok-A", session.AccessToken)
	require.Equal(t, "designer", session.UserRole)

	// A second upsert replaces the single row rather than adding one
	require.NoError(t, repo.Upsert(ctx, &db.Session{AccessToken: "tok-B", RefreshCookie: "cookie-2"}))
	session, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-B", session.AccessToken)
	require.Equal(t, "cookie-2", session.RefreshCookie)
}

func TestSessionRepositoryDelete(t *testing.T) {
	temp := t.TempDir()
	db.Path = filepath.Join(temp, "atelier.db")
	require.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })

	repo := db.NewSessionRepository(db.GetDB())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &db.Session{AccessToken: "tok-A", UserName: "dana"}))
	require.NoError(t, repo.Delete(ctx))

	// Deleting clears token and user data together
	session, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, session)

	// Deleting an already-empty table is not an error
	require.NoError(t, repo.Delete(ctx))
}
