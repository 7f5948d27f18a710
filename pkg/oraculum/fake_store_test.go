package oraculum

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// fakeStore is an in-memory store.Service with just enough filter semantics
// to exercise the repository, backup and query layers without a running
// database.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string]*fakeCollection

	// createCalls counts CreateCollection invocations per collection.
	createCalls map[string]int

	// events records write operations in order, for asserting sequencing.
	events []string

	// ackFilter, when set, decides which submitted objects AddObjects
	// acknowledges. Used to provoke the restore reconciliation loop.
	ackFilter func(batch []store.Object) []store.Object

	// rank, when set, assigns a distance to each object of a ranked query.
	rank func(props map[string]any) float64
}

type fakeCollection struct {
	class   store.Class
	objects map[string]store.Object
	order   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: map[string]*fakeCollection{},
		createCalls: map[string]int{},
	}
}

var _ store.Service = (*fakeStore)(nil)

func (f *fakeStore) ListCollections(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeStore) GetCollection(ctx context.Context, name string) (*store.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[name]
	if !ok {
		return nil, store.ErrCollectionNotFound
	}
	class := col.class
	return &class, nil
}

func (f *fakeStore) CreateCollection(ctx context.Context, class store.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls[class.Name]++
	if _, ok := f.collections[class.Name]; ok {
		return fmt.Errorf("collection %q already exists", class.Name)
	}
	f.collections[class.Name] = &fakeCollection{class: class, objects: map[string]store.Object{}}
	return nil
}

func (f *fakeStore) UpdateCollection(ctx context.Context, class store.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[class.Name]
	if !ok {
		return store.ErrCollectionNotFound
	}
	col.class.Vectorizer = class.Vectorizer
	return nil
}

func (f *fakeStore) DeleteCollection(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, name)
	return nil
}

func (f *fakeStore) AddProperty(ctx context.Context, collection string, prop store.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return store.ErrCollectionNotFound
	}
	col.class.Properties = append(col.class.Properties, prop)
	return nil
}

func (f *fakeStore) Count(ctx context.Context, collection string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return 0, store.ErrCollectionNotFound
	}
	return int64(len(col.order)), nil
}

func (f *fakeStore) CountByProperty(ctx context.Context, collection, property string, value any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return 0, store.ErrCollectionNotFound
	}
	var n int64
	for _, id := range col.order {
		if matchValue(col.objects[id].Properties[property], value) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) AddObjects(ctx context.Context, collection string, objects []store.Object) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return nil, store.ErrCollectionNotFound
	}

	f.events = append(f.events, fmt.Sprintf("add:%s", collection))

	accepted := objects
	if f.ackFilter != nil {
		accepted = f.ackFilter(objects)
	}

	ids := make([]string, 0, len(accepted))
	for _, obj := range accepted {
		id := obj.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, exists := col.objects[id]; !exists {
			col.order = append(col.order, id)
		}
		col.objects[id] = store.Object{ID: id, Properties: cloneProps(obj.Properties)}
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) GetObject(ctx context.Context, collection, id string) (*store.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return nil, store.ErrCollectionNotFound
	}
	obj, ok := col.objects[id]
	if !ok {
		return nil, store.ErrObjectNotFound
	}
	out := store.Object{ID: obj.ID, Properties: cloneProps(obj.Properties)}
	return &out, nil
}

func (f *fakeStore) SaveObject(ctx context.Context, collection string, object store.Object) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return store.ErrCollectionNotFound
	}
	f.events = append(f.events, fmt.Sprintf("save:%s", collection))
	if _, exists := col.objects[object.ID]; !exists {
		col.order = append(col.order, object.ID)
	}
	col.objects[object.ID] = store.Object{ID: object.ID, Properties: cloneProps(object.Properties)}
	return nil
}

func (f *fakeStore) DeleteObject(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return store.ErrCollectionNotFound
	}
	delete(col.objects, id)
	for i, oid := range col.order {
		if oid == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) ListObjects(ctx context.Context, collection string, page store.Page) ([]store.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return nil, store.ErrCollectionNotFound
	}

	ordered := append([]string(nil), col.order...)
	if page.Sort != "" {
		sort.SliceStable(ordered, func(i, j int) bool {
			a := fmt.Sprintf("%v", col.objects[ordered[i]].Properties[page.Sort])
			b := fmt.Sprintf("%v", col.objects[ordered[j]].Properties[page.Sort])
			if page.Order == store.SortDesc {
				return a > b
			}
			return a < b
		})
	}

	var out []store.Object
	for i := page.Offset; i < int64(len(ordered)) && int64(len(out)) < page.Limit; i++ {
		obj := col.objects[ordered[i]]
		out = append(out, store.Object{ID: obj.ID, Properties: cloneProps(obj.Properties)})
	}
	return out, nil
}

func (f *fakeStore) Query(ctx context.Context, collection string, query store.Query) ([]store.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, ok := f.collections[collection]
	if !ok {
		return nil, store.ErrCollectionNotFound
	}

	var out []store.Object
	for _, id := range col.order {
		obj := col.objects[id]
		if !matchFilterSets(obj.Properties, query.Filters) {
			continue
		}
		result := store.Object{ID: obj.ID, Properties: cloneProps(obj.Properties)}
		if query.Ranked() {
			d := 0.0
			if f.rank != nil {
				d = f.rank(obj.Properties)
			}
			if query.MaxDistance != nil && d > float64(*query.MaxDistance) {
				continue
			}
			result.Distance = &d
		}
		out = append(out, result)
	}

	if query.Ranked() {
		sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	} else {
		if query.Sort != "" {
			sort.SliceStable(out, func(i, j int) bool {
				a := fmt.Sprintf("%v", out[i].Properties[query.Sort])
				b := fmt.Sprintf("%v", out[j].Properties[query.Sort])
				if query.Order == store.SortDesc {
					return a > b
				}
				return a < b
			})
		}
		if query.Offset >= int64(len(out)) {
			out = nil
		} else {
			out = out[query.Offset:]
		}
	}
	if query.Limit != nil && len(out) > *query.Limit {
		out = out[:*query.Limit]
	}
	return out, nil
}

// ── Filter Evaluation ────────────────────────────────────────────────────────

func matchFilterSets(props map[string]any, filters []*store.FilterSet) bool {
	for _, fs := range filters {
		if !matchFilterSet(props, fs) {
			return false
		}
	}
	return true
}

func matchFilterSet(props map[string]any, fs *store.FilterSet) bool {
	if fs == nil {
		return true
	}
	if fs.Must != nil {
		for _, c := range fs.Must.Conditions {
			if !matchCondition(props, c) {
				return false
			}
		}
	}
	if fs.Should != nil && len(fs.Should.Conditions) > 0 {
		matched := false
		for _, c := range fs.Should.Conditions {
			if matchCondition(props, c) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if fs.MustNot != nil {
		for _, c := range fs.MustNot.Conditions {
			if matchCondition(props, c) {
				return false
			}
		}
	}
	return true
}

func matchCondition(props map[string]any, c store.FilterCondition) bool {
	switch cond := c.(type) {
	case *store.MatchCondition:
		return matchValue(props[cond.Field], cond.Value)
	case *store.MatchAnyCondition:
		for _, v := range cond.Values {
			if matchValue(props[cond.Field], v) {
				return true
			}
		}
		return false
	case *store.TimeRangeCondition:
		t := coerceTime(props[cond.Field])
		if t == nil {
			return false
		}
		r := cond.Range
		if r.Gte != nil && t.Before(*r.Gte) {
			return false
		}
		if r.Gt != nil && !t.After(*r.Gt) {
			return false
		}
		if r.Lte != nil && t.After(*r.Lte) {
			return false
		}
		if r.Lt != nil && !t.Before(*r.Lt) {
			return false
		}
		return true
	case *store.IsNullCondition:
		_, present := props[cond.Field]
		return !present || props[cond.Field] == nil
	default:
		return false
	}
}

// matchValue compares a stored value against a filter value, treating a
// string-slice field as "contains".
func matchValue(stored, want any) bool {
	switch s := stored.(type) {
	case []string:
		for _, item := range s {
			if matchValue(item, want) {
				return true
			}
		}
		return false
	case []any:
		for _, item := range s {
			if matchValue(item, want) {
				return true
			}
		}
		return false
	}
	return fmt.Sprintf("%v", stored) == fmt.Sprintf("%v", want)
}

func coerceTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// factID is a convenience for tests building deterministic ids.
func factID(n int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%s", strings.Repeat("0", 12-len(fmt.Sprint(n)))+fmt.Sprint(n))
}
