// Package memory fournit un backend en mémoire (dev local et tests).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
)

type Store struct {
	mu sync.RWMutex

	users    map[string]models.User
	byEmail  map[string]string
	products map[string]models.Product
	carts    map[string]models.Cart
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]models.User),
		byEmail:  make(map[string]string),
		products: make(map[string]models.Product),
		carts:    make(map[string]models.Cart),
	}
}

// Stores expose le même backend derrière les trois interfaces.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Users:    userStore{s},
		Products: productStore{s},
		Carts:    cartStore{s},
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- Users ---

type userStore struct{ s *Store }

func (u userStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	id, ok := u.s.byEmail[emailKey(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	user := u.s.users[id]
	return copyUser(user), nil
}

func (u userStore) FindByID(_ context.Context, id string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(user), nil
}

func (u userStore) Create(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := u.s.byEmail[key]; exists {
		return store.ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	u.s.users[user.ID] = *copyUser(*user)
	u.s.byEmail[key] = user.ID
	return nil
}

func (u userStore) Save(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, ok := u.s.users[user.ID]; !ok {
		return store.ErrNotFound
	}
	u.s.users[user.ID] = *copyUser(*user)
	return nil
}

func copyUser(u models.User) *models.User {
	if u.CartID != nil {
		id := *u.CartID
		u.CartID = &id
	}
	return &u
}

// --- Products ---

type productStore struct{ s *Store }

func (p productStore) List(_ context.Context) ([]models.Product, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	res := make([]models.Product, 0, len(p.s.products))
	for _, prod := range p.s.products {
		res = append(res, prod)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt == nil || res[j].CreatedAt == nil {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(*res[j].CreatedAt)
	})
	return res, nil
}

func (p productStore) FindByID(_ context.Context, id string) (*models.Product, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	prod, ok := p.s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &prod, nil
}

func (p productStore) Create(_ context.Context, prod *models.Product) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if prod.ID == "" {
		prod.ID = uuid.NewString()
	}
	now := time.Now()
	prod.CreatedAt = &now
	prod.UpdatedAt = &now
	p.s.products[prod.ID] = *prod
	return nil
}

func (p productStore) Update(_ context.Context, prod *models.Product) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	existing, ok := p.s.products[prod.ID]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	prod.CreatedAt = existing.CreatedAt
	prod.UpdatedAt = &now
	p.s.products[prod.ID] = *prod
	return nil
}

func (p productStore) Delete(_ context.Context, id string) (*models.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	prod, ok := p.s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(p.s.products, id)
	return &prod, nil
}

// --- Carts ---

type cartStore struct{ s *Store }

func (c cartStore) FindByID(_ context.Context, id string) (*models.Cart, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	cart, ok := c.s.carts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cart.Clone(), nil
}

func (c cartStore) Create(_ context.Context, cart *models.Cart) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if _, exists := c.s.carts[cart.ID]; exists {
		return store.ErrDuplicate
	}
	cart.Version = 1
	c.s.carts[cart.ID] = *cart.Clone()
	return nil
}

func (c cartStore) Save(_ context.Context, cart *models.Cart) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	current, ok := c.s.carts[cart.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != cart.Version {
		return store.ErrVersionConflict
	}
	cart.Version++
	c.s.carts[cart.ID] = *cart.Clone()
	return nil
}
