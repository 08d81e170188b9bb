package services

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
	"kle_back_end/internal/utils"
)

// DefaultCartAttempts borne les relectures quand un autre appel a modifié le panier entre-temps.
const DefaultCartAttempts = 3

type CartService struct {
	users       store.UserStore
	products    store.ProductStore
	carts       store.CartStore
	auth        *AuthService
	images      ImageResolver
	maxAttempts int
}

func NewCartService(stores store.Stores, auth *AuthService, images ImageResolver) *CartService {
	return &CartService{
		users:       stores.Users,
		products:    stores.Products,
		carts:       stores.Carts,
		auth:        auth,
		images:      images,
		maxAttempts: DefaultCartAttempts,
	}
}

// AddProducts fusionne ids dans le panier de l'utilisateur (créé au premier ajout).
// Les ids inconnus sont ignorés, un produit déjà présent n'est pas ajouté deux fois,
// et le total est recalculé sur la liste finale.
func (s *CartService) AddProducts(ctx context.Context, claims *utils.Claims, ids []string) (*models.CartView, error) {
	incoming, found, err := s.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	user, err := s.auth.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}

	if user.HasCart() {
		view, err := s.mutate(ctx, *user.CartID, func(cart *models.Cart, products map[string]models.Product) error {
			for _, id := range incoming {
				if !cart.Contains(id) {
					cart.ProductIDs = append(cart.ProductIDs, id)
				}
				products[id] = found[id]
			}
			return nil
		})
		if !errors.Is(err, errCartMissing) {
			return view, err
		}
		log.Printf("⚠️ Panier %s introuvable pour %s, création d'un nouveau panier", *user.CartID, user.ID)
	}

	return s.create(ctx, user, incoming, found)
}

// RemoveProduct retire la première occurrence de productID et recalcule le total.
func (s *CartService) RemoveProduct(ctx context.Context, claims *utils.Claims, productID string) (*models.CartView, error) {
	user, err := s.auth.Resolve(ctx, claims)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrNotFound, "User Not Found")
	}
	if err != nil {
		return nil, err
	}
	if !user.HasCart() {
		return nil, newError(ErrNotFound, "Cart Not Found")
	}

	view, err := s.mutate(ctx, *user.CartID, func(cart *models.Cart, products map[string]models.Product) error {
		for i, id := range cart.ProductIDs {
			if _, ok := products[id]; ok && id == productID {
				cart.ProductIDs = append(cart.ProductIDs[:i:i], cart.ProductIDs[i+1:]...)
				return nil
			}
		}
		return newError(ErrNotFound, "Product Not Found in Cart")
	})
	if errors.Is(err, errCartMissing) {
		return nil, newError(ErrNotFound, "Cart Not Found")
	}
	return view, err
}

// GetCart renvoie nil (sans erreur) si l'utilisateur n'a pas encore de panier.
func (s *CartService) GetCart(ctx context.Context, claims *utils.Claims) (*models.CartView, error) {
	user, err := s.auth.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if !user.HasCart() {
		return nil, nil
	}

	cart, err := s.carts.FindByID(ctx, *user.CartID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(ctx, "lecture panier", err)
	}

	_, products, err := s.lookup(ctx, cart.ProductIDs)
	if err != nil {
		return nil, err
	}
	cart.ProductIDs = listed(cart.ProductIDs, products)
	return s.view(ctx, cart, products), nil
}

var errCartMissing = errors.New("cart missing")

// mutate applique change au panier et l'enregistre par compare-and-set,
// en relisant le panier si la version a changé.
func (s *CartService) mutate(ctx context.Context, cartID string, change func(*models.Cart, map[string]models.Product) error) (*models.CartView, error) {
	for attempt := 1; ; attempt++ {
		cart, err := s.carts.FindByID(ctx, cartID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, errCartMissing
		}
		if err != nil {
			return nil, storeError(ctx, "lecture panier", err)
		}

		_, products, err := s.lookup(ctx, cart.ProductIDs)
		if err != nil {
			return nil, err
		}
		if err := change(cart, products); err != nil {
			return nil, err
		}

		cart.ProductIDs = listed(cart.ProductIDs, products)
		cart.Total = Total(cart.ProductIDs, products)

		err = s.carts.Save(ctx, cart)
		if errors.Is(err, store.ErrVersionConflict) && attempt < s.maxAttempts {
			log.Printf("🔁 Panier %s modifié en parallèle, nouvelle tentative (%d)", cartID, attempt)
			continue
		}
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, &Error{Kind: ErrStore, Message: "Cart was modified concurrently, please retry", Err: err}
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, errCartMissing
		}
		if err != nil {
			return nil, storeError(ctx, "sauvegarde panier", err)
		}
		return s.view(ctx, cart, products), nil
	}
}

func (s *CartService) create(ctx context.Context, user *models.User, ids []string, products map[string]models.Product) (*models.CartView, error) {
	cart := &models.Cart{
		UserID:     user.ID,
		ProductIDs: ids,
		Total:      Total(ids, products),
	}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, storeError(ctx, "création panier", err)
	}

	user.CartID = &cart.ID
	if err := s.users.Save(ctx, user); err != nil {
		return nil, storeError(ctx, "rattachement panier", err)
	}
	return s.view(ctx, cart, products), nil
}

// lookup résout les produits existants. Renvoie les ids trouvés, dédoublonnés, dans l'ordre d'entrée.
func (s *CartService) lookup(ctx context.Context, ids []string) ([]string, map[string]models.Product, error) {
	found := make(map[string]models.Product, len(ids))
	ordered := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, seen := found[id]; seen {
			continue
		}
		p, err := s.products.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, storeError(ctx, "lecture produit", err)
		}
		found[id] = *p
		ordered = append(ordered, id)
	}
	return ordered, found, nil
}

func (s *CartService) view(ctx context.Context, cart *models.Cart, products map[string]models.Product) *models.CartView {
	items := make([]models.Product, 0, len(cart.ProductIDs))
	for _, id := range cart.ProductIDs {
		items = append(items, products[id])
	}
	return &models.CartView{
		ID:       cart.ID,
		Products: resolveImages(ctx, s.images, items),
		Total:    Total(cart.ProductIDs, products),
	}
}

// listed garde les ids qui référencent un produit existant, sans doublon.
func listed(ids []string, products map[string]models.Product) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := products[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Total somme les prix des produits listés en décimal exact.
func Total(ids []string, products map[string]models.Product) float64 {
	sum := decimal.Zero
	for _, id := range ids {
		if p, ok := products[id]; ok {
			sum = sum.Add(decimal.NewFromFloat(p.Price))
		}
	}
	return sum.InexactFloat64()
}
