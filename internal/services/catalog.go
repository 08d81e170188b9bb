package services

import (
	"context"
	"errors"
	"strings"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
	"kle_back_end/internal/utils"
)

type CatalogOp string

const (
	OpCreate CatalogOp = "create"
	OpGet    CatalogOp = "get"
	OpUpdate CatalogOp = "update"
	OpDelete CatalogOp = "delete"
)

// CatalogPolicy donne la permission exigée pour chaque opération du catalogue.
var CatalogPolicy = map[CatalogOp]string{
	OpCreate: models.PermProductsCreate,
	OpGet:    models.PermProductsView,
	OpUpdate: models.PermProductsEdit,
	OpDelete: models.PermProductsDelete,
}

type CatalogService struct {
	products store.ProductStore
	auth     *AuthService
	images   ImageResolver
}

func NewCatalogService(products store.ProductStore, auth *AuthService, images ImageResolver) *CatalogService {
	return &CatalogService{products: products, auth: auth, images: images}
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Brand       string  `json:"brand"`
}

// ProductPatch : un champ nil est conservé tel quel.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Price       *float64 `json:"price"`
	Brand       *string  `json:"brand"`
	Stock       *int     `json:"stock"`
}

func (p ProductPatch) apply(prod *models.Product) {
	if p.Name != nil {
		prod.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Brand != nil {
		prod.Brand = *p.Brand
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Price < 0:
		return newError(ErrValidation, "Price must be a non-negative number")
	case p.Stock < 0:
		return newError(ErrValidation, "Stock must be a non-negative integer")
	}
	return nil
}

// authorize résout le claim puis applique CatalogPolicy sur l'utilisateur vivant.
func (s *CatalogService) authorize(ctx context.Context, claims *utils.Claims, op CatalogOp) (*models.User, error) {
	user, err := s.auth.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !user.Can(CatalogPolicy[op]) {
		if op == OpDelete {
			return nil, newError(ErrForbidden, "Forbidden: You do not have permission to delete this product")
		}
		return nil, newError(ErrForbidden, "Forbidden")
	}
	return user, nil
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, storeError(ctx, "lecture produits", err)
	}
	return resolveImages(ctx, s.images, products), nil
}

func (s *CatalogService) Create(ctx context.Context, claims *utils.Claims, in ProductInput) (*models.Product, error) {
	user, err := s.authorize(ctx, claims, OpCreate)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Stock:       in.Stock,
		Brand:       in.Brand,
		UserID:      user.ID,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeError(ctx, "création produit", err)
	}
	return s.present(ctx, p), nil
}

func (s *CatalogService) Get(ctx context.Context, claims *utils.Claims, id string) (*models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, newError(ErrValidation, "Product Id not found")
	}
	if _, err := s.authorize(ctx, claims, OpGet); err != nil {
		return nil, err
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, p), nil
}

// Update applique le patch champ par champ (preserve-on-omit).
func (s *CatalogService) Update(ctx context.Context, claims *utils.Claims, id string, patch ProductPatch) (*models.Product, error) {
	if _, err := s.authorize(ctx, claims, OpUpdate); err != nil {
		return nil, err
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(p)
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "Product not found")
		}
		return nil, storeError(ctx, "mise à jour produit", err)
	}
	return s.present(ctx, p), nil
}

// Delete exige un admin : le rôle est lu sur l'utilisateur en base, pas dans le token.
func (s *CatalogService) Delete(ctx context.Context, claims *utils.Claims, id string) (*models.Product, error) {
	if _, err := s.authorize(ctx, claims, OpDelete); err != nil {
		return nil, err
	}

	p, err := s.products.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "Product not found")
	}
	if err != nil {
		return nil, storeError(ctx, "suppression produit", err)
	}
	return s.present(ctx, p), nil
}

func (s *CatalogService) find(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "Product not found")
	}
	if err != nil {
		return nil, storeError(ctx, "lecture produit", err)
	}
	return p, nil
}

func (s *CatalogService) present(ctx context.Context, p *models.Product) *models.Product {
	if s.images == nil {
		return p
	}
	out := *p
	out.Image = s.images.Resolve(ctx, p.Image)
	return &out
}
