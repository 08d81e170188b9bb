// Package store définit les collections persistantes utilisées par les services.
package store

import (
	"context"
	"errors"

	"kle_back_end/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrVersionConflict est renvoyée quand le panier a été modifié entre la lecture et l'écriture.
	ErrVersionConflict = errors.New("version conflict")
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
}

type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) (*models.Product, error)
}

// CartStore persiste les paniers. Save n'écrit que si la version stockée
// vaut toujours c.Version, puis incrémente c.Version.
type CartStore interface {
	FindByID(ctx context.Context, id string) (*models.Cart, error)
	Create(ctx context.Context, c *models.Cart) error
	Save(ctx context.Context, c *models.Cart) error
}

// Stores regroupe les trois collections, quel que soit le backend.
type Stores struct {
	Users    UserStore
	Products ProductStore
	Carts    CartStore
}
