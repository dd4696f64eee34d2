// ABOUTME: Social feed repository over the flat "feed" collection.
// ABOUTME: Items are published idempotently under the originating workout id.
package repository

import (
	"context"
	"sort"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/docstore/normalize"
	"github.com/repset/repset/internal/models"
)

// Feed wraps the "feed" collection of published workout summaries.
type Feed struct {
	*Repo[models.FeedItem, *models.FeedItem]
}

// NewFeed creates the feed repository.
func NewFeed(store docstore.Store) *Feed {
	return &Feed{Repo: New[models.FeedItem]("feed", store, "feed")}
}

// Publish upserts a feed item under its workout id. Republishing the
// same workout overwrites the earlier summary instead of duplicating it.
func (f *Feed) Publish(ctx context.Context, item *models.FeedItem, opts ...WriteOption) (*models.FeedItem, error) {
	if item.WorkoutID == "" {
		return nil, &Error{Repo: f.Name(), Op: "publish", Err: ErrEmptyID}
	}
	data, err := normalize.Encode(item)
	if err != nil {
		return nil, &Error{Repo: f.Name(), Op: "publish", Err: err}
	}
	return f.Upsert(ctx, item.WorkoutID, data, opts...)
}

// ListRecent pages the global feed, newest workouts first.
func (f *Feed) ListRecent(ctx context.Context, limit int, after Cursor) ([]*models.FeedItem, Cursor, error) {
	return f.GetByFilter(ctx, Filter{
		OrderBy: []docstore.Order{
			{Field: "performedAt", Desc: true},
			{Field: docstore.DocIDField, Desc: true},
		},
		Limit: limit,
		After: after,
	})
}

// ByAuthors returns feed items from the given authors, newest first.
// The store caps membership predicates, so author ids are queried in
// chunks and the pages merged before sorting.
func (f *Feed) ByAuthors(ctx context.Context, authorIDs []string, limit int) ([]*models.FeedItem, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	ids := append([]string(nil), authorIDs...)
	var merged []*models.FeedItem
	for len(ids) > 0 {
		n := min(len(ids), docstore.InLimit)
		chunk := ids[:n]
		ids = ids[n:]
		found, _, err := f.GetByFilter(ctx, Filter{
			Where:   []docstore.Where{{Field: "authorId", Op: docstore.OpIn, Value: toAny(chunk)}},
			OrderBy: []docstore.Order{{Field: "performedAt", Desc: true}},
			Limit:   limit,
		})
		if err != nil {
			return nil, err
		}
		merged = append(merged, found...)
	}
	sortFeedItems(merged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// sortFeedItems orders merged pages newest first, with the document id as
// the final tie-break so equal instants keep a stable order across calls,
// matching the listing queries.
func sortFeedItems(items []*models.FeedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PerformedAt.Equal(items[j].PerformedAt) {
			return items[i].PerformedAt.After(items[j].PerformedAt)
		}
		return items[i].ID > items[j].ID
	})
}
