// Package user содержит сервис пользователей.
package user

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/repository"
)

// Service — операции над пользователями, включая вложенный адрес.
type Service struct {
	repo   *repository.Repository[domain.User, domain.UserPatch]
	logger *log.Entry
}

// NewService конструирует сервис пользователей.
func NewService(delegate domain.Delegate[domain.User, domain.UserPatch], logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "user-service")
	}
	return &Service{
		repo:   repository.New(delegate),
		logger: logger,
	}
}

// List возвращает страницу пользователей по единой строке поиска.
func (s *Service) List(ctx context.Context, pageable domain.Pageable, filter domain.UserFilter) (domain.Page[domain.User], error) {
	return s.repo.ListPage(ctx, filter.Predicate(), domain.Sort{}, pageable, []string{domain.IncludeAddress})
}

// Get возвращает пользователя вместе с адресом.
func (s *Service) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.repo.FindOne(ctx, id)
}

// Create регистрирует нового пользователя. Уникальность email
// гарантирует хранилище; конфликт транслируется в ErrConflict.
func (s *Service) Create(ctx context.Context, u domain.User) (domain.User, error) {
	if strings.TrimSpace(u.Name) == "" {
		return domain.User{}, domain.Validationf("user name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return domain.User{}, domain.Validationf("user email is required")
	}
	if u.Password == "" {
		return domain.User{}, domain.Validationf("user password is required")
	}

	created, err := s.repo.CreateOne(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.WithField("user_id", created.ID).Info("user created")
	return created, nil
}

// Update применяет частичное обновление пользователя. Адресная часть
// патча создаёт или дополняет вложенный адрес.
func (s *Service) Update(ctx context.Context, id int64, patch domain.UserPatch) (domain.User, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.User{}, domain.Validationf("user name is required")
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return domain.User{}, domain.Validationf("user email is required")
	}
	return s.repo.UpdateOne(ctx, id, patch)
}

// Delete удаляет пользователя.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteOne(ctx, id)
}
