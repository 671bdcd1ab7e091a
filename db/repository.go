package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository defines decoupled operations for session persistence.
type SessionRepository interface {
	Get(ctx context.Context) (*Session, error)
	Upsert(ctx context.Context, session *Session) error
	Delete(ctx context.Context) error
}

// TaskRepository defines decoupled operations for the local task cache.
type TaskRepository interface {
	Put(ctx context.Context, t Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context) ([]Task, error)
	SearchByTitle(ctx context.Context, titleSubstr string) ([]Task, error)
	Clear(ctx context.Context) error
}

// gormSessionRepo is a GORM-backed implementation of SessionRepository.
// Use constructor NewSessionRepository to obtain an instance.
type gormSessionRepo struct{ db *gorm.DB }

// gormTaskRepo is a GORM-backed implementation of TaskRepository.
// Use constructor NewTaskRepository to obtain an instance.
type gormTaskRepo struct{ db *gorm.DB }

// NewSessionRepository creates a SessionRepository. Accepts *gorm.DB to avoid global access.
func NewSessionRepository(db *gorm.DB) SessionRepository { return &gormSessionRepo{db: db} }

// NewTaskRepository creates a TaskRepository. Accepts *gorm.DB to avoid global access.
func NewTaskRepository(db *gorm.DB) TaskRepository { return &gormTaskRepo{db: db} }

func (r *gormSessionRepo) Get(ctx context.Context) (*Session, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var session Session
	err := r.db.WithContext(ctx).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *gormSessionRepo) Upsert(ctx context.Context, session *Session) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	session.ID = 1
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_cookie",
			"user_id", "user_name", "user_email", "user_role",
			"saved_at",
		}),
	}).Create(session).Error
}

func (r *gormSessionRepo) Delete(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Session{}).Error
}

func (r *gormTaskRepo) Put(ctx context.Context, t Task) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&t).Error
}

func (r *gormTaskRepo) GetByID(ctx context.Context, id string) (*Task, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var task Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *gormTaskRepo) List(ctx context.Context) ([]Task, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var tasks []Task
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *gormTaskRepo) SearchByTitle(ctx context.Context, titleSubstr string) ([]Task, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var tasks []Task
	if err := r.db.WithContext(ctx).Where("title LIKE ?", "%"+titleSubstr+"%").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *gormTaskRepo) Clear(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Task{}).Error
}
