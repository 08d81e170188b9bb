package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/handlers"
	"kle_back_end/internal/models"
	"kle_back_end/internal/services"
	"kle_back_end/internal/store"
	"kle_back_end/internal/store/memory"
)

type app struct {
	router *gin.Engine
	stores store.Stores
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := memory.NewStore().Stores()
	auth := services.NewAuthService(stores.Users, []byte("routes_secret"), time.Hour)
	h := handlers.New(
		auth,
		services.NewCatalogService(stores.Products, auth, nil),
		services.NewCartService(stores, auth, nil),
		nil,
	)

	r := gin.New()
	RegisterRoutes(r, h, Options{RequestTimeout: 5 * time.Second})
	return &app{router: r, stores: stores}
}

func (a *app) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (a *app) login(t *testing.T, email string) string {
	t.Helper()
	if code, body := a.do(t, http.MethodPost, "/register", "", gin.H{"name": "T", "email": email, "password": "pw"}); code != http.StatusOK {
		t.Fatalf("register %s: %d %v", email, code, body)
	}
	code, body := a.do(t, http.MethodPost, "/login", "", gin.H{"email": email, "password": "pw"})
	if code != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, code, body)
	}
	return body["token"].(string)
}

func (a *app) addProduct(t *testing.T, token, name string, price float64) string {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/add-product", token, gin.H{"name": name, "price": price, "stock": 5})
	if code != http.StatusOK {
		t.Fatalf("add-product %s: %d %v", name, code, body)
	}
	return body["product"].(map[string]interface{})["id"].(string)
}

func cartOf(t *testing.T, body map[string]interface{}) (float64, []string) {
	t.Helper()
	cart, ok := body["cart"].(map[string]interface{})
	if !ok {
		t.Fatalf("no cart in %v", body)
	}
	var ids []string
	for _, p := range cart["products"].([]interface{}) {
		ids = append(ids, p.(map[string]interface{})["id"].(string))
	}
	return cart["total"].(float64), ids
}

func TestCartScenario(t *testing.T) {
	a := newApp(t)
	token := a.login(t, "buyer@kle.io")

	p1 := a.addProduct(t, token, "P1", 10)
	p2 := a.addProduct(t, token, "P2", 5)

	code, body := a.do(t, http.MethodGet, "/cart", token, nil)
	if code != http.StatusOK || body["cart"] != nil {
		t.Fatalf("expected empty cart, got %d %v", code, body)
	}

	code, body = a.do(t, http.MethodPost, "/cart/add", token, gin.H{"products": []string{p1, p2}})
	if code != http.StatusOK {
		t.Fatalf("cart/add: %d %v", code, body)
	}
	if total, ids := cartOf(t, body); total != 15 || len(ids) != 2 {
		t.Errorf("expected total 15 with 2 products, got %v %v", total, ids)
	}

	code, body = a.do(t, http.MethodPost, "/cart/add", token, gin.H{"products": []string{p1}})
	if total, _ := cartOf(t, body); code != http.StatusOK || total != 15 {
		t.Errorf("re-adding must not change the total, got %d %v", code, total)
	}

	code, body = a.do(t, http.MethodDelete, "/cart/product/delete", token, gin.H{"productID": p1})
	if code != http.StatusOK {
		t.Fatalf("remove: %d %v", code, body)
	}
	total, ids := cartOf(t, body)
	if total != 5 || len(ids) != 1 || ids[0] != p2 {
		t.Errorf("expected [P2] with total 5, got %v %v", ids, total)
	}

	code, body = a.do(t, http.MethodDelete, "/cart/product/delete", token, gin.H{"productID": p1})
	if code != http.StatusNotFound || body["message"] != "Product Not Found in Cart" {
		t.Errorf("expected 404, got %d %v", code, body)
	}

	code, body = a.do(t, http.MethodGet, "/cart", token, nil)
	if total, ids := cartOf(t, body); code != http.StatusOK || total != 5 || len(ids) != 1 {
		t.Errorf("unexpected cart %d %v", code, body)
	}
}

func TestAuthRoutes(t *testing.T) {
	a := newApp(t)
	a.login(t, "ana@kle.io")

	code, body := a.do(t, http.MethodPost, "/register", "", gin.H{"name": "A", "email": "ana@kle.io", "password": "x"})
	if code != http.StatusBadRequest || body["message"] != "User already has an account" {
		t.Errorf("duplicate register: %d %v", code, body)
	}

	code, body = a.do(t, http.MethodPost, "/register", "", gin.H{"email": "b@kle.io"})
	if code != http.StatusBadRequest || body["message"] != "Please enter all fields" {
		t.Errorf("incomplete register: %d %v", code, body)
	}

	code, body = a.do(t, http.MethodPost, "/login", "", gin.H{"email": "ana@kle.io", "password": "bad"})
	if code != http.StatusBadRequest || body["message"] != "Invalid Password" {
		t.Errorf("bad password: %d %v", code, body)
	}

	code, _ = a.do(t, http.MethodPost, "/login", "", gin.H{"email": "ghost@kle.io", "password": "pw"})
	if code != http.StatusBadRequest {
		t.Errorf("unknown user: %d", code)
	}
}

func TestProductRoutes(t *testing.T) {
	a := newApp(t)
	user := a.login(t, "user@kle.io")
	admin := a.login(t, "admin@kle.io")

	ctx := context.Background()
	u, _ := a.stores.Users.FindByEmail(ctx, "admin@kle.io")
	u.Role = models.RoleAdmin
	if err := a.stores.Users.Save(ctx, u); err != nil {
		t.Fatalf("promote: %v", err)
	}

	id := a.addProduct(t, user, "Desk", 120)

	if code, _ := a.do(t, http.MethodPost, "/add-product", "", gin.H{"name": "X", "price": 1}); code != http.StatusUnauthorized {
		t.Errorf("add-product without token: %d", code)
	}
	if code, _ := a.do(t, http.MethodPost, "/add-product", user, gin.H{"name": "X", "price": -1}); code != http.StatusBadRequest {
		t.Errorf("add-product with negative price: %d", code)
	}

	code, body := a.do(t, http.MethodPatch, "/product/edit/"+id, user, gin.H{"productData": gin.H{"price": 99, "brand": "KLE"}})
	if code != http.StatusOK || body["message"] != "Product Updated Successfully" {
		t.Errorf("edit: %d %v", code, body)
	}
	if code, _ := a.do(t, http.MethodPatch, "/product/edit/"+id, "bad-token", gin.H{"productData": gin.H{"price": 1}}); code != http.StatusBadRequest {
		t.Errorf("edit with invalid token must answer 400, got %d", code)
	}
	if code, _ := a.do(t, http.MethodPatch, "/product/edit/"+id, user, gin.H{"price": 1}); code != http.StatusBadRequest {
		t.Errorf("edit without productData must answer 400, got %d", code)
	}

	code, body = a.do(t, http.MethodGet, "/product/"+id, user, nil)
	product, _ := body["product"].(map[string]interface{})
	if code != http.StatusOK || product["price"] != 99.0 || product["brand"] != "KLE" || product["name"] != "Desk" {
		t.Errorf("get after edit: %d %v", code, body)
	}

	stored, err := a.stores.Products.FindByID(ctx, id)
	if err != nil || stored.Price != 99 || stored.Brand != "KLE" || stored.Stock != 5 {
		t.Errorf("edit not persisted: %+v %v", stored, err)
	}

	if code, _ := a.do(t, http.MethodGet, "/product/missing", user, nil); code != http.StatusBadRequest {
		t.Errorf("unknown product: %d", code)
	}

	if code, _ := a.do(t, http.MethodDelete, "/product/delete/"+id, user, nil); code != http.StatusForbidden {
		t.Errorf("non-admin delete: %d", code)
	}
	code, body = a.do(t, http.MethodDelete, "/product/delete/"+id, admin, nil)
	if code != http.StatusOK || body["product"] == nil {
		t.Errorf("admin delete: %d %v", code, body)
	}
	if code, _ := a.do(t, http.MethodDelete, "/product/delete/"+id, admin, nil); code != http.StatusNotFound {
		t.Errorf("second delete: %d", code)
	}

	code, body = a.do(t, http.MethodGet, "/products", "", nil)
	if list, _ := body["products"].([]interface{}); code != http.StatusOK || len(list) != 0 {
		t.Errorf("products after delete: %d %v", code, body)
	}
}

func TestCartRoutesForDeletedUser(t *testing.T) {
	a := newApp(t)
	token := a.login(t, "ghost@kle.io")

	// Le token reste valide mais le compte n'existe plus.
	a.stores = memory.NewStore().Stores()
	auth := services.NewAuthService(a.stores.Users, []byte("routes_secret"), time.Hour)
	h := handlers.New(auth,
		services.NewCatalogService(a.stores.Products, auth, nil),
		services.NewCartService(a.stores, auth, nil),
		nil,
	)
	a.router = gin.New()
	RegisterRoutes(a.router, h, Options{})

	if code, body := a.do(t, http.MethodGet, "/cart", token, nil); code != http.StatusBadRequest || body["message"] != "User not found" {
		t.Errorf("get cart: %d %v", code, body)
	}
	if code, _ := a.do(t, http.MethodPost, "/cart/add", token, gin.H{"products": []string{}}); code != http.StatusBadRequest {
		t.Errorf("add: %d", code)
	}
	if code, body := a.do(t, http.MethodDelete, "/cart/product/delete", token, gin.H{"productID": "x"}); code != http.StatusNotFound || body["message"] != "User Not Found" {
		t.Errorf("remove: %d %v", code, body)
	}
	if code, _ := a.do(t, http.MethodGet, "/cart", "", nil); code != http.StatusUnauthorized {
		t.Errorf("missing token: %d", code)
	}
}
