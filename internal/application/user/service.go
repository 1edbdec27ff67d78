package user

import (
	"context"

	"github.com/incial/workhub-api/internal/domain"
)

// Service covers the admin-facing user operations. Registration and
// credential changes live in the auth service.
type Service interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}
