package scylla

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
)

type UserStore struct {
	session *gocql.Session
}

func NewUserStore(session *gocql.Session) *UserStore {
	return &UserStore{session: session}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var userID gocql.UUID
	err := s.session.Query(qGetUserIDByEmail, normalizeEmail(email)).WithContext(ctx).Scan(&userID)
	if err != nil {
		return nil, notFound(err)
	}
	return s.findByUUID(ctx, userID)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return s.findByUUID(ctx, userID)
}

func (s *UserStore) findByUUID(ctx context.Context, userID gocql.UUID) (*models.User, error) {
	var id, cartID gocql.UUID
	var email, password, name, token, role string
	err := s.session.Query(qGetUserByID, userID).WithContext(ctx).
		Scan(&id, &email, &password, &name, &token, &role, &cartID)
	if err != nil {
		return nil, notFound(err)
	}

	user := &models.User{
		ID:       id.String(),
		Email:    email,
		Password: password,
		Name:     name,
		Token:    token,
		Role:     role,
	}
	if cartID != (gocql.UUID{}) {
		c := cartID.String()
		user.CartID = &c
	}
	return user, nil
}

// Create réserve d'abord l'email (LWT) puis écrit la ligne users.
// Deux inscriptions simultanées du même email ne peuvent pas réussir toutes les deux.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	userID := gocql.TimeUUID()
	email := normalizeEmail(u.Email)

	applied, err := s.session.Query(qReserveEmail, email, userID).WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("réservation email: %w", err)
	}
	if !applied {
		return store.ErrDuplicate
	}

	now := time.Now()
	err = s.session.Query(qInsertUser, userID, email, u.Password, u.Name, u.Token, u.Role,
		cartUUID(u.CartID), now, now).WithContext(ctx).Exec()
	if err != nil {
		// On libère l'email pour ne pas bloquer une nouvelle tentative
		if relErr := s.session.Query(qReleaseEmail, email).WithContext(ctx).Exec(); relErr != nil {
			log.Printf("⚠️ Impossible de libérer l'email %s: %v", email, relErr)
		}
		return fmt.Errorf("insertion utilisateur: %w", err)
	}

	u.ID = userID.String()
	u.Email = email
	return nil
}

func (s *UserStore) Save(ctx context.Context, u *models.User) error {
	userID, err := gocql.ParseUUID(u.ID)
	if err != nil {
		return store.ErrNotFound
	}
	return s.session.Query(qUpdateUser, u.Name, u.Token, u.Role, cartUUID(u.CartID), time.Now(), userID).
		WithContext(ctx).Exec()
}

func cartUUID(id *string) interface{} {
	if id == nil || *id == "" {
		return nil
	}
	u, err := gocql.ParseUUID(*id)
	if err != nil {
		return nil
	}
	return u
}

func notFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return store.ErrNotFound
	}
	return err
}
