// ABOUTME: Read-only repository over the shared exercise catalogue.
// ABOUTME: Every mutating operation fails with ErrNotAllowed before any I/O.
package repository

import (
	"context"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/models"
)

// Exercises wraps the curated "exercises" collection. The catalogue is
// maintained out of band; clients only read it.
type Exercises struct {
	*Repo[models.Exercise, *models.Exercise]
}

// NewExercises creates the read-only exercise repository.
func NewExercises(store docstore.Store) *Exercises {
	return &Exercises{Repo: New[models.Exercise]("exercises", store, "exercises")}
}

// ByMuscleGroup lists catalogue entries for one muscle group, by name.
func (e *Exercises) ByMuscleGroup(ctx context.Context, group string, limit int) ([]*models.Exercise, error) {
	found, _, err := e.GetByFilter(ctx, Filter{
		Where:   []docstore.Where{{Field: "muscleGroup", Op: docstore.OpEqual, Value: group}},
		OrderBy: []docstore.Order{{Field: "name"}},
		Limit:   limit,
	})
	return found, err
}

// Create is not allowed on the catalogue.
func (e *Exercises) Create(ctx context.Context, entity *models.Exercise, opts ...WriteOption) (*models.Exercise, error) {
	return nil, &Error{Repo: e.Name(), Op: "create", Err: ErrNotAllowed}
}

// Update is not allowed on the catalogue.
func (e *Exercises) Update(ctx context.Context, id string, data map[string]any, opts ...WriteOption) (*models.Exercise, error) {
	return nil, &Error{Repo: e.Name(), Op: "update", Err: ErrNotAllowed}
}

// Upsert is not allowed on the catalogue.
func (e *Exercises) Upsert(ctx context.Context, id string, data map[string]any, opts ...WriteOption) (*models.Exercise, error) {
	return nil, &Error{Repo: e.Name(), Op: "upsert", Err: ErrNotAllowed}
}

// Delete is not allowed on the catalogue.
func (e *Exercises) Delete(ctx context.Context, id string, opts ...WriteOption) error {
	return &Error{Repo: e.Name(), Op: "delete", Err: ErrNotAllowed}
}
