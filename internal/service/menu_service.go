package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
)

const defaultLanguage = "en"

// PublicMenu is the translated category/item tree served to scanners.
type PublicMenu struct {
	TenantID uuid.UUID            `json:"tenant_id"`
	Name     string               `json:"name"`
	Settings datatypes.JSON       `json:"settings,omitempty"`
	Language string               `json:"language"`
	Menu     []PublicMenuCategory `json:"menu"`
}

type PublicMenuCategory struct {
	ID    uuid.UUID        `json:"id"`
	Name  string           `json:"name"`
	Items []PublicMenuItem `json:"items"`
}

type PublicMenuItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	ImageURL    string    `json:"image_url,omitempty"`
}

type MenuService interface {
	// GetPublicMenu builds the translated tree for a tenant. Subscription
	// gating happens in the caller; this only shapes data.
	GetPublicMenu(ctx context.Context, tenant *model.Tenant, language string) (*PublicMenu, error)
}

type menuService struct {
	menuRepo repository.MenuRepository
}

func NewMenuService(menuRepo repository.MenuRepository) MenuService {
	return &menuService{menuRepo: menuRepo}
}

// translate picks the requested language, falling back to the default
// language and then to any available value.
func translate(t model.Translations, language string) string {
	values := t.Data()
	if v, ok := values[language]; ok && v != "" {
		return v
	}
	if v, ok := values[defaultLanguage]; ok && v != "" {
		return v
	}
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *menuService) GetPublicMenu(ctx context.Context, tenant *model.Tenant, language string) (*PublicMenu, error) {
	if language == "" {
		language = defaultLanguage
	}

	categories, err := s.menuRepo.ListActiveByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	menu := &PublicMenu{
		TenantID: tenant.ID,
		Name:     tenant.Name,
		Settings: tenant.Settings,
		Language: language,
		Menu:     make([]PublicMenuCategory, 0, len(categories)),
	}
	for _, category := range categories {
		out := PublicMenuCategory{
			ID:    category.ID,
			Name:  translate(category.Name, language),
			Items: make([]PublicMenuItem, 0, len(category.Items)),
		}
		for _, item := range category.Items {
			out.Items = append(out.Items, PublicMenuItem{
				ID:          item.ID,
				Name:        translate(item.Name, language),
				Description: translate(item.Description, language),
				PriceCents:  item.PriceCents,
				ImageURL:    item.ImageURL,
			})
		}
		menu.Menu = append(menu.Menu, out)
	}
	return menu, nil
}

var _ MenuService = (*menuService)(nil)
