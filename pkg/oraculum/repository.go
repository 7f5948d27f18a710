package oraculum

import (
	"context"
	"fmt"
	"time"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// DefaultListLimit caps unbounded listings.
const DefaultListLimit = 1024

// Repository offers uniform create/read/update/delete/list operations over
// any entity type with a descriptor. It is a thin contract layer above
// Collection: absence handling, the update/delete fetch-first protocol, and
// property-query validation live here.
type Repository[T any] struct {
	col *Collection[T]
	log Logger
}

// NewRepository builds a repository over the given collection handle.
func NewRepository[T any](col *Collection[T], log Logger) *Repository[T] {
	return &Repository[T]{col: col, log: log}
}

// Collection exposes the underlying handle.
func (r *Repository[T]) Collection() *Collection[T] { return r.col }

// Add stores a new entity, sets its identity to the store-assigned id and
// returns that id.
func (r *Repository[T]) Add(ctx context.Context, entity *T) (string, error) {
	ids, err := r.col.add(ctx, []*T{entity})
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", &StoreError{Op: "add", Class: r.col.Name(), Cause: fmt.Errorf("store acknowledged no ids")}
	}
	r.col.desc.SetID(entity, ids[0])
	return ids[0], nil
}

// AddAll stores a batch of entities and returns how many the store
// acknowledged. Identities are set on the acknowledged prefix.
func (r *Repository[T]) AddAll(ctx context.Context, entities []*T) (int, error) {
	if len(entities) == 0 {
		return 0, nil
	}
	ids, err := r.col.add(ctx, entities)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if i < len(entities) {
			r.col.desc.SetID(entities[i], id)
		}
	}
	return len(ids), nil
}

// Get fetches an entity by id. A well-formed absent id yields (nil, nil),
// not an error.
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	return r.col.get(ctx, id)
}

// List returns a page of entities. Zero limit falls back to
// DefaultListLimit. An empty collection yields an empty slice.
func (r *Repository[T]) List(ctx context.Context, limit, offset int64, sort string, order store.SortOrder) ([]*T, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return r.col.list(ctx, store.Page{Limit: limit, Offset: offset, Sort: sort, Order: order})
}

// Update overwrites the stored record matching the entity's identity.
// Updating an absent record fails with ErrNotFound.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	id := r.col.desc.GetID(entity)
	if id == "" {
		return fmt.Errorf("cannot update %s without id: %w", r.col.Name(), ErrNotFound)
	}

	existing, err := r.col.get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%s %s: %w", r.col.Name(), id, ErrNotFound)
	}

	return r.col.save(ctx, entity)
}

// Delete removes a record by id. Deleting an absent record returns false,
// not an error.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	existing, err := r.col.get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if err := r.col.remove(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// GetByProperty returns entities whose property equals value, optionally
// sorted by another payload field. The property must be declared on the
// collection and the value's runtime type must match the declared one;
// violations fail with SchemaMismatchError. An empty sort leaves results in
// store order.
func (r *Repository[T]) GetByProperty(ctx context.Context, property string, value any, limit, offset int64, sort string, order store.SortOrder) ([]*T, error) {
	if err := r.validateProperty(property, value); err != nil {
		return nil, err
	}

	cond := store.NewMatch(property, value)
	q := store.Query{
		Filters: []*store.FilterSet{store.NewFilterSet(store.Must(cond))},
		Offset:  offset,
		Sort:    sort,
		Order:   order,
	}
	lim := int(limit)
	if lim <= 0 {
		lim = DefaultListLimit
	}
	q.Limit = &lim

	return r.col.query(ctx, q)
}

// Count returns the number of stored records.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	return r.col.count(ctx)
}

// CountByProperty counts records whose property equals value, with the same
// validation as GetByProperty.
func (r *Repository[T]) CountByProperty(ctx context.Context, property string, value any) (int64, error) {
	if err := r.validateProperty(property, value); err != nil {
		return 0, err
	}
	return r.col.countByProperty(ctx, property, value)
}

func (r *Repository[T]) validateProperty(property string, value any) error {
	prop := r.col.desc.Class.Property(property)
	if prop == nil {
		return &SchemaMismatchError{
			Class:    r.col.Name(),
			Property: property,
			Reason:   "property is not declared on the collection",
		}
	}
	if !valueMatchesType(value, prop.DataType) {
		return &SchemaMismatchError{
			Class:    r.col.Name(),
			Property: property,
			Reason:   fmt.Sprintf("value of type %T does not match declared type %s", value, prop.DataType),
		}
	}
	return nil
}

// valueMatchesType checks a runtime value against a declared store type.
func valueMatchesType(value any, dt store.DataType) bool {
	switch dt {
	case store.DataTypeText:
		_, ok := value.(string)
		return ok
	case store.DataTypeTextArray:
		switch value.(type) {
		case string, []string:
			return true
		}
		return false
	case store.DataTypeInt:
		switch value.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case store.DataTypeNumber:
		switch value.(type) {
		case float32, float64, int, int64:
			return true
		}
		return false
	case store.DataTypeBool:
		_, ok := value.(bool)
		return ok
	case store.DataTypeDate:
		switch value.(type) {
		case time.Time, *time.Time:
			return true
		}
		return false
	case store.DataTypeGeo:
		switch value.(type) {
		case GeoCoordinates, *GeoCoordinates:
			return true
		}
		return false
	default:
		return false
	}
}
