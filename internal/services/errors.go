package services

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Catégories d'erreurs exposées aux handlers (comparées avec errors.Is).
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("authentication error")
	ErrForbidden  = errors.New("forbidden")
	ErrStore      = errors.New("store error")
	ErrTimeout    = errors.New("timeout")
)

// Error associe une catégorie et un message destiné au client.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// storeError classe une erreur de persistance : délai dépassé ou échec du store.
func storeError(ctx context.Context, op string, err error) *Error {
	log.Printf("❌ %s: %v", op, err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Message: "Request timed out", Err: err}
	}
	return &Error{Kind: ErrStore, Message: "Internal server error", Err: err}
}

// Message renvoie le texte à afficher au client pour err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}
