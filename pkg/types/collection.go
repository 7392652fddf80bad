package types

import "context"

// Collection provides uniform CRUD and paged listing for one admin entity
// type. It is the server side of the retrieval functions consumed by the
// fetch units.
type Collection[T any] interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(ctx context.Context, id string) (T, error)

	// Create validates and inserts a new entity, generating its ID.
	Create(ctx context.Context, entity T) (T, error)

	// Update replaces the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Update(ctx context.Context, id string, entity T) (T, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(ctx context.Context, id string) error

	// List returns one page of entities matching q.Filters. Unknown filter
	// keys are ignored.
	List(ctx context.Context, q ListQuery) (PageResult[T], error)
}

// ListQuery selects a page of a collection.
type ListQuery struct {
	Page    int
	Limit   int
	Filters map[string]any
}

// Standard collection names.
const (
	CollectionUsers       = "users"
	CollectionSubscribers = "subscribers"
	CollectionExperiments = "experiments"
)

// Filter keys understood by the collections. Not every collection accepts
// every key.
const (
	FilterSearch     = "search"
	FilterRole       = "role"
	FilterLocale     = "locale"
	FilterActive     = "active"
	FilterSource     = "source"
	FilterSubscribed = "subscribed"
	FilterName       = "name"
	FilterVariant    = "variant"
	FilterMinViews   = "min_views"
)
