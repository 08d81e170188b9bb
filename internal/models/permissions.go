package models

// Permissions du catalogue
const (
	PermProductsView   = "products.view"
	PermProductsCreate = "products.create"
	PermProductsEdit   = "products.edit"
	PermProductsDelete = "products.delete"
)

// RolePermissions est la table de politique par rôle.
// Création et modification restent ouvertes à tout compte, la suppression est réservée aux admins.
var RolePermissions = map[string][]string{
	RoleUser:  {PermProductsView, PermProductsCreate, PermProductsEdit},
	RoleAdmin: {PermProductsView, PermProductsCreate, PermProductsEdit, PermProductsDelete},
}

// Can vérifie si le rôle de l'utilisateur accorde la permission
func (u *User) Can(permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range RolePermissions[u.Role] {
		if p == permission {
			return true
		}
	}
	return false
}
