package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
	"kle_back_end/internal/utils"
)

type AuthService struct {
	users    store.UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users store.UserStore, secret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult contient le token émis à l'inscription et le profil public.
type LoginResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register crée un compte "user" avec un token valable tokenTTL.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return newError(ErrValidation, "Please enter all fields")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return newError(ErrConflict, "User already has an account")
	} else if !errors.Is(err, store.ErrNotFound) {
		return storeError(ctx, "recherche utilisateur", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return &Error{Kind: ErrValidation, Message: "Invalid password", Err: err}
	}

	token, err := utils.GenerateJWT(s.secret, email, s.tokenTTL)
	if err != nil {
		return &Error{Kind: ErrStore, Message: "Internal server error", Err: err}
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Token:    token,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return newError(ErrConflict, "User already has an account")
		}
		return storeError(ctx, "création utilisateur", err)
	}
	return nil
}

// Login ne ré-émet pas de token : il renvoie celui stocké à l'inscription.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, newError(ErrValidation, "Please enter all fields")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "User is not registered, please register first")
	}
	if err != nil {
		return nil, storeError(ctx, "recherche utilisateur", err)
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, &Error{Kind: ErrAuth, Message: "Invalid Password", Err: err}
	}

	return &LoginResult{
		ID:    user.ID,
		Name:  user.Name,
		Token: user.Token,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

// Authenticate décode et vérifie un bearer token.
func (s *AuthService) Authenticate(token string) (*utils.Claims, error) {
	claims, err := utils.ParseJWT(s.secret, token)
	if err != nil {
		return nil, &Error{Kind: ErrAuth, Message: "Unauthorized", Err: err}
	}
	return claims, nil
}

// Resolve charge l'utilisateur vivant correspondant au claim.
// Les décisions d'autorisation se prennent sur ce record, jamais sur le claim seul.
func (s *AuthService) Resolve(ctx context.Context, claims *utils.Claims) (*models.User, error) {
	if claims == nil || claims.Email == "" {
		return nil, newError(ErrAuth, "Unauthorized")
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, storeError(ctx, "résolution utilisateur", err)
	}
	return user, nil
}
