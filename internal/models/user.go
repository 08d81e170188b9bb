package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"-"`
	Token    string  `json:"-"`
	Role     string  `json:"role"`
	CartID   *string `json:"cart,omitempty"`
}

// HasCart indique si un panier est déjà rattaché à l'utilisateur
func (u *User) HasCart() bool {
	return u.CartID != nil && *u.CartID != ""
}
