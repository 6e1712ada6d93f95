package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
)

// Service is the read side of the users document. Membership is managed
// out of band; the gallery only resolves uploader identities.
type Service struct {
	store  port.DocumentStore
	logger *slog.Logger
}

func NewService(store port.DocumentStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

var _ port.UserService = (*Service)(nil)

// List returns every known user; an absent document is an empty list
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	list, _, err := docstore.Get[domain.UserList](ctx, s.store, domain.UsersKey)
	if err != nil {
		return nil, err
	}
	if list.Users == nil {
		return []domain.User{}, nil
	}
	return list.Users, nil
}

// Get resolves one user by id
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
}
