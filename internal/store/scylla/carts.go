package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
)

type CartStore struct {
	session *gocql.Session
}

func NewCartStore(session *gocql.Session) *CartStore {
	return &CartStore{session: session}
}

func (s *CartStore) FindByID(ctx context.Context, id string) (*models.Cart, error) {
	cartID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var (
		storedID, userID gocql.UUID
		productIDs       []gocql.UUID
		total            float64
		version          int
	)
	err = s.session.Query(qGetCart, cartID).WithContext(ctx).
		Scan(&storedID, &userID, &productIDs, &total, &version)
	if err != nil {
		return nil, notFound(err)
	}

	cart := &models.Cart{
		ID:         storedID.String(),
		UserID:     userID.String(),
		ProductIDs: make([]string, 0, len(productIDs)),
		Total:      total,
		Version:    version,
	}
	for _, pid := range productIDs {
		cart.ProductIDs = append(cart.ProductIDs, pid.String())
	}
	return cart, nil
}

func (s *CartStore) Create(ctx context.Context, c *models.Cart) error {
	cartID := gocql.TimeUUID()
	userID, err := gocql.ParseUUID(c.UserID)
	if err != nil {
		return fmt.Errorf("user_id invalide: %w", err)
	}

	now := time.Now()
	applied, err := s.session.Query(qInsertCart, cartID, userID, toUUIDs(c.ProductIDs), c.Total, 1, now, now).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("création panier: %w", err)
	}
	if !applied {
		return store.ErrDuplicate
	}

	c.ID = cartID.String()
	c.Version = 1
	return nil
}

// Save est un compare-and-set sur la colonne version.
func (s *CartStore) Save(ctx context.Context, c *models.Cart) error {
	cartID, err := gocql.ParseUUID(c.ID)
	if err != nil {
		return store.ErrNotFound
	}

	current := map[string]interface{}{}
	applied, err := s.session.Query(qSaveCart, toUUIDs(c.ProductIDs), c.Total, c.Version+1, time.Now(), cartID, c.Version).
		WithContext(ctx).MapScanCAS(current)
	if err != nil {
		return fmt.Errorf("sauvegarde panier: %w", err)
	}
	if !applied {
		// Ligne absente : Scylla ne renvoie que la colonne [applied]
		if _, ok := current["version"]; !ok {
			return store.ErrNotFound
		}
		return store.ErrVersionConflict
	}

	c.Version++
	return nil
}

// Les ids non-UUID sont ignorés : ils ne peuvent référencer aucun produit.
func toUUIDs(ids []string) []gocql.UUID {
	out := make([]gocql.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := gocql.ParseUUID(id); err == nil {
			out = append(out, u)
		}
	}
	return out
}
