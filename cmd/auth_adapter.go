package cmd

import (
	"context"

	"atelier/db"
)

// sessionRepoStore adapts the session repository to the synchronous store
// interface the API client and the auth service expect.
type sessionRepoStore struct {
	repo db.SessionRepository
}

func (s *sessionRepoStore) GetSession() (*db.Session, error) {
	return s.repo.Get(context.Background())
}

func (s *sessionRepoStore) SaveSession(session *db.Session) error {
	return s.repo.Upsert(context.Background(), session)
}

func (s *sessionRepoStore) ClearSession() error {
	return s.repo.Delete(context.Background())
}
