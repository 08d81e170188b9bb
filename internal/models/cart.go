package models

// Cart est la forme persistée : seulement les références produits.
type Cart struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	ProductIDs []string `json:"products"`
	Total      float64  `json:"total"`
	Version    int      `json:"-"`
}

// CartView est le panier renvoyé au client, produits résolus.
type CartView struct {
	ID       string    `json:"id"`
	Products []Product `json:"products"`
	Total    float64   `json:"total"`
}

// Contains vérifie si un produit est déjà dans le panier
func (c *Cart) Contains(productID string) bool {
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

func (c *Cart) Clone() *Cart {
	cp := *c
	cp.ProductIDs = append([]string(nil), c.ProductIDs...)
	return &cp
}
