package oraculum

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// Logger defines the interface for logging operations in the oraculum
// package. This interface allows the package to use any logging
// implementation that conforms to these methods.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Collection is a typed handle over one entity's backing collection. It
// binds lazily: the first operation triggers Ensure, which creates the
// collection if absent or reconciles its field set against the descriptor if
// present.
//
// Steady-state reads and writes run unserialized; only the first-use
// create/reconcile path is collapsed so that concurrent first calls issue
// exactly one create against the store.
type Collection[T any] struct {
	svc  store.Service
	desc Descriptor[T]
	log  Logger

	sf      singleflight.Group
	ensured atomic.Bool
}

// NewCollection validates the descriptor and returns an unbound handle. The
// store is not contacted until the first operation.
func NewCollection[T any](svc store.Service, desc Descriptor[T], log Logger) (*Collection[T], error) {
	desc, err := NewDescriptor(desc)
	if err != nil {
		return nil, err
	}
	return &Collection[T]{svc: svc, desc: desc, log: log}, nil
}

// Name returns the backing collection name.
func (c *Collection[T]) Name() string { return c.desc.Class.Name }

// Ensure makes the backing collection exist and match the descriptor's field
// set, adding any declared field the store does not know yet. It is
// idempotent and safe for concurrent first use.
func (c *Collection[T]) Ensure(ctx context.Context) error {
	if c.ensured.Load() {
		return nil
	}

	_, err, _ := c.sf.Do(c.desc.Class.Name, func() (any, error) {
		if c.ensured.Load() {
			return nil, nil
		}
		if err := c.reconcile(ctx); err != nil {
			return nil, err
		}
		c.ensured.Store(true)
		return nil, nil
	})
	return err
}

func (c *Collection[T]) reconcile(ctx context.Context) error {
	name := c.desc.Class.Name

	existing, err := c.svc.GetCollection(ctx, name)
	if errors.Is(err, store.ErrCollectionNotFound) {
		c.log.Debug("creating collection", nil, map[string]interface{}{"collection": name})
		return storeErr("create", name, c.svc.CreateCollection(ctx, c.desc.Class))
	}
	if err != nil {
		return storeErr("get-schema", name, err)
	}

	// Re-apply the declared class so adapter-side state (vectorizer, skip
	// flags) survives process restarts, then add any missing fields.
	if err := c.svc.UpdateCollection(ctx, c.desc.Class); err != nil {
		return storeErr("update-schema", name, err)
	}
	for _, prop := range c.desc.Class.Properties {
		if existing.Property(prop.Name) != nil {
			continue
		}
		c.log.Info("adding missing collection field", nil, map[string]interface{}{
			"collection": name,
			"field":      prop.Name,
		})
		if err := c.svc.AddProperty(ctx, name, prop); err != nil {
			return storeErr("add-property", name, err)
		}
	}
	return nil
}

// forget drops the ensured flag so the next operation re-checks the store.
// Used after the collection is deleted out from under the handle during
// initialization and migration.
func (c *Collection[T]) forget() {
	c.ensured.Store(false)
}

// ── Record Operations ────────────────────────────────────────────────────────

// get fetches an entity by id. Absence is reported as (nil, nil); only
// transport failures error.
func (c *Collection[T]) get(ctx context.Context, id string) (*T, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}

	obj, err := c.svc.GetObject(ctx, c.desc.Class.Name, id)
	if errors.Is(err, store.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get", c.desc.Class.Name, err)
	}

	entity := new(T)
	c.desc.Decode(obj.Properties, entity)
	c.desc.SetID(entity, obj.ID)
	return entity, nil
}

// add submits a batch of entities and returns the store-acknowledged ids, in
// submission order.
func (c *Collection[T]) add(ctx context.Context, entities []*T) ([]string, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}

	objects := make([]store.Object, len(entities))
	for i, e := range entities {
		objects[i] = store.Object{
			ID:         c.desc.GetID(e),
			Properties: c.desc.Encode(e),
		}
	}

	ids, err := c.svc.AddObjects(ctx, c.desc.Class.Name, objects)
	if err != nil {
		return nil, storeErr("add", c.desc.Class.Name, err)
	}
	return ids, nil
}

// save overwrites an existing record with the entity's current attributes.
func (c *Collection[T]) save(ctx context.Context, entity *T) error {
	if err := c.Ensure(ctx); err != nil {
		return err
	}

	obj := store.Object{
		ID:         c.desc.GetID(entity),
		Properties: c.desc.Encode(entity),
	}
	return storeErr("save", c.desc.Class.Name, c.svc.SaveObject(ctx, c.desc.Class.Name, obj))
}

// remove deletes a record by id.
func (c *Collection[T]) remove(ctx context.Context, id string) error {
	if err := c.Ensure(ctx); err != nil {
		return err
	}
	return storeErr("delete", c.desc.Class.Name, c.svc.DeleteObject(ctx, c.desc.Class.Name, id))
}

// list returns a page of entities with identity populated on each.
func (c *Collection[T]) list(ctx context.Context, page store.Page) ([]*T, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}

	objects, err := c.svc.ListObjects(ctx, c.desc.Class.Name, page)
	if err != nil {
		return nil, storeErr("list", c.desc.Class.Name, err)
	}
	return c.decodeAll(objects), nil
}

// query executes a composed structured/semantic query.
func (c *Collection[T]) query(ctx context.Context, q store.Query) ([]*T, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}

	objects, err := c.svc.Query(ctx, c.desc.Class.Name, q)
	if err != nil {
		return nil, storeErr("query", c.desc.Class.Name, err)
	}
	return c.decodeAll(objects), nil
}

// count returns the total number of records.
func (c *Collection[T]) count(ctx context.Context) (int64, error) {
	if err := c.Ensure(ctx); err != nil {
		return 0, err
	}

	n, err := c.svc.Count(ctx, c.desc.Class.Name)
	if err != nil {
		return 0, storeErr("count", c.desc.Class.Name, err)
	}
	return n, nil
}

// countByProperty counts records whose property equals value.
func (c *Collection[T]) countByProperty(ctx context.Context, property string, value any) (int64, error) {
	if err := c.Ensure(ctx); err != nil {
		return 0, err
	}

	n, err := c.svc.CountByProperty(ctx, c.desc.Class.Name, property, value)
	if err != nil {
		return 0, storeErr("count-by-property", c.desc.Class.Name, err)
	}
	return n, nil
}

func (c *Collection[T]) decodeAll(objects []store.Object) []*T {
	entities := make([]*T, len(objects))
	for i := range objects {
		entity := new(T)
		c.desc.Decode(objects[i].Properties, entity)
		c.desc.SetID(entity, objects[i].ID)
		if c.desc.SetDistance != nil && objects[i].Distance != nil {
			c.desc.SetDistance(entity, objects[i].Distance)
		}
		entities[i] = entity
	}
	return entities
}
