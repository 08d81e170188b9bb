package scylla

// Requêtes CQL utilisées par les stores. gocql prépare et met en cache
// chaque requête à la première exécution sur une session.
const (
	// --- keyspace users ---
	qGetUserIDByEmail = `SELECT user_id FROM users_by_email WHERE email = ?`
	qGetUserByID      = `SELECT user_id, email, password, name, token, role, cart_id FROM users WHERE user_id = ?`
	qInsertUser       = `INSERT INTO users (user_id, email, password, name, token, role, cart_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	qReserveEmail = `INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`
	qReleaseEmail = `DELETE FROM users_by_email WHERE email = ?`
	qUpdateUser   = `UPDATE users SET name = ?, token = ?, role = ?, cart_id = ?, updated_at = ? WHERE user_id = ?`

	// --- keyspace products ---
	qListProducts = `SELECT product_id, name, description, image, price, stock, brand, user_id, created_at, updated_at FROM products`
	qGetProduct   = `SELECT product_id, name, description, image, price, stock, brand, user_id, created_at, updated_at
		FROM products WHERE product_id = ?`
	qInsertProduct = `INSERT INTO products (product_id, name, description, image, price, stock, brand, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	qUpdateProduct = `UPDATE products SET name = ?, description = ?, image = ?, price = ?, stock = ?, brand = ?, updated_at = ?
		WHERE product_id = ? IF EXISTS`
	qDeleteProduct = `DELETE FROM products WHERE product_id = ?`

	// --- keyspace orders ---
	qGetCart    = `SELECT cart_id, user_id, product_ids, total, version FROM carts WHERE cart_id = ?`
	qInsertCart = `INSERT INTO carts (cart_id, user_id, product_ids, total, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`
	qSaveCart = `UPDATE carts SET product_ids = ?, total = ?, version = ?, updated_at = ?
		WHERE cart_id = ? IF version = ?`
)
