package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store errors surfaced to services. Raw driver errors never leave this
// package.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// translateError maps driver errors onto the store error taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}
