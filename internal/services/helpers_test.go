package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
	"kle_back_end/internal/store/memory"
	"kle_back_end/internal/utils"
)

var testSecret = []byte("test_secret")

type fixture struct {
	stores  store.Stores
	auth    *AuthService
	catalog *CatalogService
	carts   *CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := memory.NewStore().Stores()
	auth := NewAuthService(stores.Users, testSecret, time.Hour)
	return &fixture{
		stores:  stores,
		auth:    auth,
		catalog: NewCatalogService(stores.Products, auth, nil),
		carts:   NewCartService(stores, auth, nil),
	}
}

// signup inscrit un utilisateur et renvoie ses claims.
func (f *fixture) signup(t *testing.T, email string) *utils.Claims {
	t.Helper()
	ctx := context.Background()
	if err := f.auth.Register(ctx, RegisterInput{Name: "Test", Email: email, Password: "secret"}); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	res, err := f.auth.Login(ctx, email, "secret")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	claims, err := f.auth.Authenticate(res.Token)
	if err != nil {
		t.Fatalf("authenticate %s: %v", email, err)
	}
	return claims
}

func (f *fixture) promote(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	u, err := f.stores.Users.FindByEmail(ctx, email)
	if err != nil {
		t.Fatalf("find %s: %v", email, err)
	}
	u.Role = models.RoleAdmin
	if err := f.stores.Users.Save(ctx, u); err != nil {
		t.Fatalf("save %s: %v", email, err)
	}
}

func (f *fixture) product(t *testing.T, name string, price float64) string {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: 1}
	if err := f.stores.Products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p.ID
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
