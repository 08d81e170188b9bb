package database

import (
	"fmt"
	"log"
)

// Tables par keyspace. Les keyspaces eux-mêmes sont créés par l'ops (réplication).
var schema = map[string][]string{
	"users": {
		`CREATE TABLE IF NOT EXISTS users (
			user_id uuid PRIMARY KEY,
			email text,
			password text,
			name text,
			token text,
			role text,
			cart_id uuid,
			created_at timestamp,
			updated_at timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS users_by_email (
			email text PRIMARY KEY,
			user_id uuid
		)`,
	},
	"products": {
		`CREATE TABLE IF NOT EXISTS products (
			product_id timeuuid PRIMARY KEY,
			name text,
			description text,
			image text,
			price double,
			stock int,
			brand text,
			user_id uuid,
			created_at timestamp,
			updated_at timestamp
		)`,
	},
	"orders": {
		`CREATE TABLE IF NOT EXISTS carts (
			cart_id timeuuid PRIMARY KEY,
			user_id uuid,
			product_ids list<uuid>,
			total double,
			version int,
			created_at timestamp,
			updated_at timestamp
		)`,
	},
}

// EnsureSchema crée les tables manquantes (SCYLLA_AUTO_MIGRATE=true).
func (c *Connections) EnsureSchema() error {
	keyspaces := map[string]string{
		"users":    c.UsersKeyspace,
		"products": c.ProductsKeyspace,
		"orders":   c.OrdersKeyspace,
	}

	for group, ks := range keyspaces {
		session, err := c.Scylla.GetSession(ks)
		if err != nil {
			return err
		}
		for _, stmt := range schema[group] {
			if err := session.Query(stmt).Exec(); err != nil {
				return fmt.Errorf("migration %s: %w", ks, err)
			}
		}
		log.Printf("✅ Schéma vérifié pour keyspace '%s'", ks)
	}
	return nil
}
