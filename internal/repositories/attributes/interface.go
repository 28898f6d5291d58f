// Package attributes is the adapter over the character-sheet store:
// named attribute values per entity, including repeating-group rows
// addressed as prefix_rowID_field.
package attributes

//go:generate mockgen -destination=mock/mock.go -package=mockattributes -source=interface.go

import (
	"context"
	"strconv"
)

// Repository defines the attribute store contract. Unset attributes read
// as the empty string; only missing entities and store failures are
// errors.
type Repository interface {
	// Get reads one attribute value for an entity
	Get(ctx context.Context, entityID, name string) (string, error)

	// Set writes one attribute value for an entity, creating the entity
	// record if needed
	Set(ctx context.Context, entityID, name, value string) error

	// List returns every attribute for an entity
	List(ctx context.Context, entityID string) (map[string]string, error)

	// ListEntities returns the ids of all known entities
	ListEntities(ctx context.Context) ([]string, error)

	// ListAll returns every entity's full attribute map; used for the
	// global technique search behind mimic resolution
	ListAll(ctx context.Context) (map[string]map[string]string, error)
}

// GetInt reads an attribute as an integer, returning the fallback when
// the attribute is unset or not numeric
func GetInt(ctx context.Context, repo Repository, entityID, name string, fallback int) (int, error) {
	raw, err := repo.Get(ctx, entityID, name)
	if err != nil {
		return fallback, err
	}
	if v, convErr := strconv.Atoi(raw); convErr == nil {
		return v, nil
	}
	return fallback, nil
}

// SetInt writes an integer attribute
func SetInt(ctx context.Context, repo Repository, entityID, name string, value int) error {
	return repo.Set(ctx, entityID, name, strconv.Itoa(value))
}
