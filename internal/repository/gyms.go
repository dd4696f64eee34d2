// ABOUTME: Gym repository and the parent-scoped gym-member repository.
// ABOUTME: Leaderboard pagination orders by aggregates with a unique id tie-break.
package repository

import (
	"context"
	"time"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/models"
)

// Gyms wraps the "gyms" collection.
type Gyms struct {
	*Repo[models.Gym, *models.Gym]
}

// NewGyms creates the gyms repository.
func NewGyms(store docstore.Store) *Gyms {
	return &Gyms{Repo: New[models.Gym]("gyms", store, "gyms")}
}

// SearchByCity lists gyms in a city ordered by name.
func (g *Gyms) SearchByCity(ctx context.Context, city string, limit int) ([]*models.Gym, error) {
	found, _, err := g.GetByFilter(ctx, Filter{
		Where:   []docstore.Where{{Field: "city", Op: docstore.OpEqual, Value: city}},
		OrderBy: []docstore.Order{{Field: "name"}},
		Limit:   limit,
	})
	return found, err
}

// GymMembers wraps one gym's member sub-collection. The document id is
// the member's user id.
type GymMembers struct {
	*Repo[models.GymMember, *models.GymMember]
	gymID string
}

// NewGymMembers creates an unbound gym-member repository.
func NewGymMembers(store docstore.Store) *GymMembers {
	m := &GymMembers{}
	m.Repo = NewScoped[models.GymMember]("gymMembers", store, func() ([]string, error) {
		if m.gymID == "" {
			return nil, ErrParentUnbound
		}
		return []string{"gyms", m.gymID, "members"}, nil
	})
	return m
}

// Bind scopes the repository to one gym.
func (m *GymMembers) Bind(gymID string) *GymMembers {
	m.gymID = gymID
	return m
}

// Join adds a user to the gym with zeroed aggregates.
func (m *GymMembers) Join(ctx context.Context, user *models.User, opts ...WriteOption) (*models.GymMember, error) {
	member := &models.GymMember{
		GymID:    m.gymID,
		UserID:   user.ID,
		Username: user.Username,
		JoinedAt: time.Now(),
	}
	member.SetID(user.ID)
	return m.Create(ctx, member, opts...)
}

// Leaderboard pages through members ranked by lifted volume. Ordering is
// total volume, then workout count, then the member's unique document id:
// the final unique key keeps page boundaries from skipping or repeating
// rows when aggregates tie.
func (m *GymMembers) Leaderboard(ctx context.Context, limit int, after Cursor) ([]*models.GymMember, Cursor, error) {
	return m.GetByFilter(ctx, Filter{
		OrderBy: []docstore.Order{
			{Field: "totalVolumeKg", Desc: true},
			{Field: "workoutCount", Desc: true},
			{Field: docstore.DocIDField},
		},
		Limit: limit,
		After: after,
	})
}

// RecordWorkout folds a saved workout into the member's aggregates.
// Read-modify-write with last-write-wins: concurrent saves may lose an
// increment, which the leaderboard tolerates.
func (m *GymMembers) RecordWorkout(ctx context.Context, userID string, volumeKg float64, opts ...WriteOption) (*models.GymMember, error) {
	member, ok, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &Error{Repo: m.Name(), Op: "recordWorkout", Err: docstore.ErrNotFound}
	}
	return m.Update(ctx, userID, map[string]any{
		"totalVolumeKg": member.TotalVolumeKg + volumeKg,
		"workoutCount":  member.WorkoutCount + 1,
	}, opts...)
}
