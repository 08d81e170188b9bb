package database

import (
	"kle_back_end/internal/store"
	"kle_back_end/internal/store/scylla"
)

// ScyllaStores construit les stores sur les sessions ouvertes.
func (c *Connections) ScyllaStores() (store.Stores, error) {
	users, err := c.Scylla.GetSession(c.UsersKeyspace)
	if err != nil {
		return store.Stores{}, err
	}
	products, err := c.Scylla.GetSession(c.ProductsKeyspace)
	if err != nil {
		return store.Stores{}, err
	}
	orders, err := c.Scylla.GetSession(c.OrdersKeyspace)
	if err != nil {
		return store.Stores{}, err
	}

	return store.Stores{
		Users:    scylla.NewUserStore(users),
		Products: scylla.NewProductStore(products),
		Carts:    scylla.NewCartStore(orders),
	}, nil
}
