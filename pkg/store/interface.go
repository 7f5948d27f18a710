package store

import "context"

// Service is the common interface for vector-capable record stores.
//
// Every method is a single network round trip honoring ctx cancellation.
// Transport failures are returned verbatim; logical absence is signalled
// with [ErrObjectNotFound] / [ErrCollectionNotFound] so callers can
// distinguish the two.
type Service interface {
	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollection returns the store-visible schema of a collection,
	// or ErrCollectionNotFound.
	GetCollection(ctx context.Context, name string) (*Class, error)

	// CreateCollection creates a collection from the given class.
	CreateCollection(ctx context.Context, class Class) error

	// UpdateCollection re-applies the class configuration (vectorizer,
	// searchable indexes) to an existing collection without touching records.
	UpdateCollection(ctx context.Context, class Class) error

	// DeleteCollection removes a collection and all its records.
	DeleteCollection(ctx context.Context, name string) error

	// AddProperty adds a single property to an existing collection's schema.
	AddProperty(ctx context.Context, collection string, prop Property) error

	// Count returns the number of records in a collection.
	Count(ctx context.Context, collection string) (int64, error)

	// CountByProperty returns the number of records whose property equals
	// the given value.
	CountByProperty(ctx context.Context, collection, property string, value any) (int64, error)

	// AddObjects inserts a batch of records and returns the ids the store
	// acknowledged. Ids missing from the returned slice were not persisted;
	// callers may resubmit them. Objects with an empty ID get one assigned.
	AddObjects(ctx context.Context, collection string, objects []Object) ([]string, error)

	// GetObject fetches a record by id, or ErrObjectNotFound.
	GetObject(ctx context.Context, collection, id string) (*Object, error)

	// SaveObject overwrites an existing record in place.
	SaveObject(ctx context.Context, collection string, object Object) error

	// DeleteObject removes a record by id.
	DeleteObject(ctx context.Context, collection, id string) error

	// ListObjects returns an offset-paginated page of records.
	ListObjects(ctx context.Context, collection string, page Page) ([]Object, error)

	// Query executes a composed structured + semantic query. Ranked queries
	// return results ordered by ascending distance with Object.Distance set.
	Query(ctx context.Context, collection string, query Query) ([]Object, error)
}
