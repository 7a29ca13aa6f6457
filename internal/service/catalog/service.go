// Package catalog содержит сервисы каталога: товары и категории.
package catalog

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/repository"
)

// ItemService — операции каталога товаров поверх постраничного репозитория.
type ItemService struct {
	repo   *repository.Repository[domain.Item, domain.ItemPatch]
	logger *log.Entry
}

// NewItemService конструирует сервис товаров.
func NewItemService(delegate domain.Delegate[domain.Item, domain.ItemPatch], logger *log.Entry) *ItemService {
	if logger == nil {
		logger = log.WithField("component", "item-service")
	}
	return &ItemService{
		repo:   repository.New(delegate),
		logger: logger,
	}
}

// List возвращает страницу товаров по фильтру, с жадно подгруженной категорией.
func (s *ItemService) List(ctx context.Context, pageable domain.Pageable, filter domain.ItemFilter) (domain.Page[domain.Item], error) {
	return s.repo.ListPage(ctx, filter.Predicate(), domain.Sort{}, pageable, []string{domain.IncludeCategory})
}

// Get возвращает товар по идентификатору.
func (s *ItemService) Get(ctx context.Context, id int64) (domain.Item, error) {
	return s.repo.FindOne(ctx, id)
}

// Create сохраняет новый товар.
func (s *ItemService) Create(ctx context.Context, item domain.Item) (domain.Item, error) {
	if strings.TrimSpace(item.Description) == "" {
		return domain.Item{}, domain.Validationf("item description is required")
	}
	if item.UnitPrice < 0 {
		return domain.Item{}, domain.Validationf("item unit price must not be negative")
	}

	created, err := s.repo.CreateOne(ctx, item)
	if err != nil {
		return domain.Item{}, err
	}
	s.logger.WithField("item_id", created.ID).Info("item created")
	return created, nil
}

// Update применяет частичное обновление товара.
func (s *ItemService) Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.Item, error) {
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return domain.Item{}, domain.Validationf("item description is required")
	}
	if patch.UnitPrice != nil && *patch.UnitPrice < 0 {
		return domain.Item{}, domain.Validationf("item unit price must not be negative")
	}
	return s.repo.UpdateOne(ctx, id, patch)
}

// Delete удаляет товар.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteOne(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("item_id", id).Info("item deleted")
	return nil
}

// CategoryService — операции над справочником категорий.
type CategoryService struct {
	repo   *repository.Repository[domain.Category, domain.CategoryPatch]
	logger *log.Entry
}

// NewCategoryService конструирует сервис категорий.
func NewCategoryService(delegate domain.Delegate[domain.Category, domain.CategoryPatch], logger *log.Entry) *CategoryService {
	if logger == nil {
		logger = log.WithField("component", "category-service")
	}
	return &CategoryService{
		repo:   repository.New(delegate),
		logger: logger,
	}
}

// List возвращает страницу категорий.
func (s *CategoryService) List(ctx context.Context, pageable domain.Pageable) (domain.Page[domain.Category], error) {
	return s.repo.ListPage(ctx, domain.MatchAll{}, domain.Sort{}, pageable, nil)
}

// Get возвращает категорию по идентификатору.
func (s *CategoryService) Get(ctx context.Context, id int64) (domain.Category, error) {
	return s.repo.FindOne(ctx, id)
}

// Create сохраняет новую категорию.
func (s *CategoryService) Create(ctx context.Context, category domain.Category) (domain.Category, error) {
	if strings.TrimSpace(category.Description) == "" {
		return domain.Category{}, domain.Validationf("category description is required")
	}
	return s.repo.CreateOne(ctx, category)
}

// Update применяет частичное обновление категории.
func (s *CategoryService) Update(ctx context.Context, id int64, patch domain.CategoryPatch) (domain.Category, error) {
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return domain.Category{}, domain.Validationf("category description is required")
	}
	return s.repo.UpdateOne(ctx, id, patch)
}

// Delete удаляет категорию.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteOne(ctx, id)
}
