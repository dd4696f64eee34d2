// ABOUTME: Per-user personal-record repository, one document per exercise.
// ABOUTME: Parent-scoped under users/{uid}/records; saves resolver-committed tables.
package repository

import (
	"context"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/docstore/normalize"
	"github.com/repset/repset/internal/models"
)

// Records wraps one user's personal-record sub-collection. The document
// id is the exercise id.
type Records struct {
	*Repo[models.PersonalRecord, *models.PersonalRecord]
	userID string
}

// NewRecords creates an unbound personal-record repository.
func NewRecords(store docstore.Store) *Records {
	r := &Records{}
	r.Repo = NewScoped[models.PersonalRecord]("records", store, func() ([]string, error) {
		if r.userID == "" {
			return nil, ErrParentUnbound
		}
		return []string{"users", r.userID, "records"}, nil
	})
	return r
}

// Bind scopes the repository to one user.
func (r *Records) Bind(userID string) *Records {
	r.userID = userID
	return r
}

// ForExercise loads the record table for one exercise; ok is false when
// the user has no history for it yet.
func (r *Records) ForExercise(ctx context.Context, exerciseID string) (*models.PersonalRecord, bool, error) {
	return r.Get(ctx, exerciseID)
}

// Save upserts a committed record table under its exercise id.
func (r *Records) Save(ctx context.Context, pr *models.PersonalRecord, opts ...WriteOption) (*models.PersonalRecord, error) {
	if pr.ExerciseID == "" {
		return nil, &Error{Repo: r.Name(), Op: "save", Err: ErrEmptyID}
	}
	data, err := normalize.Encode(pr)
	if err != nil {
		return nil, &Error{Repo: r.Name(), Op: "save", Err: err}
	}
	return r.Upsert(ctx, pr.ExerciseID, data, opts...)
}

// ListAll returns every record table the user has, ordered by exercise.
func (r *Records) ListAll(ctx context.Context) ([]*models.PersonalRecord, error) {
	found, _, err := r.GetByFilter(ctx, Filter{
		OrderBy: []docstore.Order{{Field: "exerciseId"}},
		Limit:   200,
	})
	return found, err
}
