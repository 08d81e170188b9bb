package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
)

type ProductStore struct {
	session *gocql.Session
}

func NewProductStore(session *gocql.Session) *ProductStore {
	return &ProductStore{session: session}
}

func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	iter := s.session.Query(qListProducts).WithContext(ctx).Iter()

	products := []models.Product{}
	for {
		p, ok := scanProduct(iter.Scan)
		if !ok {
			break
		}
		products = append(products, p)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture produits: %w", err)
	}
	return products, nil
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	productID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var scanErr error
	p, ok := scanProduct(func(dest ...interface{}) bool {
		scanErr = s.session.Query(qGetProduct, productID).WithContext(ctx).Scan(dest...)
		return scanErr == nil
	})
	if !ok {
		return nil, notFound(scanErr)
	}
	return &p, nil
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	productID := gocql.TimeUUID()
	now := time.Now()

	var owner interface{}
	if uid, err := gocql.ParseUUID(p.UserID); err == nil {
		owner = uid
	}

	err := s.session.Query(qInsertProduct, productID, p.Name, p.Description, p.Image, p.Price, p.Stock,
		p.Brand, owner, now, now).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("création produit: %w", err)
	}

	p.ID = productID.String()
	p.CreatedAt = &now
	p.UpdatedAt = &now
	return nil
}

func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	productID, err := gocql.ParseUUID(p.ID)
	if err != nil {
		return store.ErrNotFound
	}

	now := time.Now()
	applied, err := s.session.Query(qUpdateProduct, p.Name, p.Description, p.Image, p.Price, p.Stock,
		p.Brand, now, productID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("mise à jour produit: %w", err)
	}
	if !applied {
		return store.ErrNotFound
	}
	p.UpdatedAt = &now
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	productID, _ := gocql.ParseUUID(p.ID)
	if err := s.session.Query(qDeleteProduct, productID).WithContext(ctx).Exec(); err != nil {
		return nil, fmt.Errorf("suppression produit: %w", err)
	}
	return p, nil
}

// scanProduct applique scan aux colonnes de qGetProduct / qListProducts.
func scanProduct(scan func(dest ...interface{}) bool) (models.Product, bool) {
	var (
		productID, userID gocql.UUID
		p                 models.Product
		createdAt         time.Time
		updatedAt         time.Time
	)
	if !scan(&productID, &p.Name, &p.Description, &p.Image, &p.Price, &p.Stock, &p.Brand, &userID, &createdAt, &updatedAt) {
		return models.Product{}, false
	}

	p.ID = productID.String()
	if userID != (gocql.UUID{}) {
		p.UserID = userID.String()
	}
	if !createdAt.IsZero() {
		p.CreatedAt = &createdAt
	}
	if !updatedAt.IsZero() {
		p.UpdatedAt = &updatedAt
	}
	return p, true
}
