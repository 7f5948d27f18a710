package qdrant

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/oraculum-ai/oraculum-go/pkg/embedding"
	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// placeholderDim is the vector size used for collections created without a
// vectorizer. Qdrant requires every collection to carry a vector config, so
// schema-only collections get a one-dimensional placeholder.
const placeholderDim = 1

// Adapter implements store.Service on top of a Qdrant instance.
//
// Qdrant has no server-side vectorizer, so the adapter plays that role: when
// a collection's class declares a vectorizer, record text is embedded through
// the configured embedding client on insert, and concept queries are embedded
// the same way. From the caller's point of view vectorization remains a store
// responsibility.
//
// The store-visible property schema is realized as payload indexes: every
// declared property gets a payload index of the matching type, which both
// enables structured filtering and makes the schema reportable through
// GetCollection.
type Adapter struct {
	client     *Client
	vectorizer *embedding.Client
	log        Logger

	// classes remembers the full declared class per collection, including
	// the parts Qdrant cannot persist (vectorizer spec, skip flags).
	classes sync.Map
}

// NewAdapter builds the store.Service implementation. vectorizer may be nil
// when no collection uses semantic search.
func NewAdapter(client *Client, vectorizer *embedding.Client, log Logger) *Adapter {
	return &Adapter{client: client, vectorizer: vectorizer, log: log}
}

var _ store.Service = (*Adapter)(nil)

// ListCollections returns the names of all collections.
func (a *Adapter) ListCollections(ctx context.Context) ([]string, error) {
	names, err := a.client.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}
	return names, nil
}

// GetCollection reports the store-visible schema of a collection. Property
// names and types come from the payload index schema; the vectorizer spec and
// skip flags come from the class registry when known.
func (a *Adapter) GetCollection(ctx context.Context, name string) (*store.Class, error) {
	exists, err := a.client.api.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to check collection '%s': %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("collection %q: %w", name, store.ErrCollectionNotFound)
	}

	info, err := a.client.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to get collection '%s': %w", name, err)
	}

	class := store.Class{Name: name}
	if reg, ok := a.classes.Load(name); ok {
		declared := reg.(store.Class)
		class.Vectorizer = declared.Vectorizer
		class.Properties = append(class.Properties, declared.Properties...)
	}

	for field, schema := range info.GetPayloadSchema() {
		if class.Property(field) != nil {
			continue
		}
		class.Properties = append(class.Properties, store.Property{
			Name:     field,
			DataType: dataTypeFor(schema.GetDataType()),
		})
	}

	return &class, nil
}

// CreateCollection creates a collection from the given class and indexes
// every declared property.
func (a *Adapter) CreateCollection(ctx context.Context, class store.Class) error {
	if class.Name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}

	dim := uint64(placeholderDim)
	if class.Vectorizer != nil {
		dim = class.Vectorizer.Dimensions
	}

	req := &qdrant.CreateCollection{
		CollectionName: class.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	}

	if err := a.client.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("[Qdrant] failed to create collection '%s': %w", class.Name, err)
	}

	a.classes.Store(class.Name, class)

	for _, prop := range class.Properties {
		if err := a.createIndex(ctx, class.Name, prop); err != nil {
			return err
		}
	}

	a.log.Info("collection created", nil, map[string]interface{}{
		"collection": class.Name,
		"properties": len(class.Properties),
		"vectorized": class.Vectorizer != nil,
	})
	return nil
}

// UpdateCollection re-applies the class configuration to an existing
// collection: it re-registers the declared class (vectorizer, skip flags)
// and makes sure every property has its payload index. Records are not
// touched.
func (a *Adapter) UpdateCollection(ctx context.Context, class store.Class) error {
	exists, err := a.client.api.CollectionExists(ctx, class.Name)
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to check collection '%s': %w", class.Name, err)
	}
	if !exists {
		return fmt.Errorf("collection %q: %w", class.Name, store.ErrCollectionNotFound)
	}

	a.classes.Store(class.Name, class)

	for _, prop := range class.Properties {
		if err := a.createIndex(ctx, class.Name, prop); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCollection removes a collection and all its records.
func (a *Adapter) DeleteCollection(ctx context.Context, name string) error {
	if err := a.client.api.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("[Qdrant] failed to delete collection '%s': %w", name, err)
	}
	a.classes.Delete(name)
	return nil
}

// AddProperty adds a payload index for a new property on an existing
// collection.
func (a *Adapter) AddProperty(ctx context.Context, collection string, prop store.Property) error {
	if err := a.createIndex(ctx, collection, prop); err != nil {
		return err
	}
	if reg, ok := a.classes.Load(collection); ok {
		class := reg.(store.Class)
		if class.Property(prop.Name) == nil {
			class.Properties = append(class.Properties, prop)
			a.classes.Store(collection, class)
		}
	}
	return nil
}

func (a *Adapter) createIndex(ctx context.Context, collection string, prop store.Property) error {
	fieldType := fieldTypeFor(prop.DataType)
	wait := true
	_, err := a.client.api.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collection,
		FieldName:      prop.Name,
		FieldType:      &fieldType,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to index property '%s.%s': %w", collection, prop.Name, err)
	}
	return nil
}

// Count returns the exact number of records in a collection.
func (a *Adapter) Count(ctx context.Context, collection string) (int64, error) {
	exact := true
	n, err := a.client.api.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("[Qdrant] failed to count '%s': %w", collection, err)
	}
	return int64(n), nil
}

// CountByProperty counts records whose property equals value.
func (a *Adapter) CountByProperty(ctx context.Context, collection, property string, value any) (int64, error) {
	cond := convertMatchCondition(&store.MatchCondition{Field: property, Value: value})
	if cond == nil {
		return 0, fmt.Errorf("unsupported value type %T for property '%s'", value, property)
	}

	exact := true
	n, err := a.client.api.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Filter:         &qdrant.Filter{Must: []*qdrant.Condition{cond}},
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("[Qdrant] failed to count '%s' by '%s': %w", collection, property, err)
	}
	return int64(n), nil
}

// AddObjects inserts a batch of records, assigning fresh ids to objects that
// have none, and returns the acknowledged ids.
func (a *Adapter) AddObjects(ctx context.Context, collection string, objects []store.Object) ([]string, error) {
	if len(objects) == 0 {
		return nil, nil
	}

	vectors, err := a.vectorize(ctx, collection, objects)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(objects))
	points := make([]*qdrant.PointStruct, len(objects))
	for i, obj := range objects {
		id := obj.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(normalizeProperties(obj.Properties)),
		}
	}

	wait := true
	if _, err := a.client.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	}); err != nil {
		return nil, fmt.Errorf("[Qdrant] upsert failed: %w", err)
	}

	return ids, nil
}

// GetObject fetches a record by id.
func (a *Adapter) GetObject(ctx context.Context, collection, id string) (*store.Object, error) {
	points, err := a.client.api.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] get failed: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("object %q: %w", id, store.ErrObjectNotFound)
	}

	pid, err := extractPointID(points[0].Id)
	if err != nil {
		return nil, err
	}
	return &store.Object{ID: pid, Properties: convertPayload(points[0].Payload)}, nil
}

// SaveObject overwrites a record in place, re-vectorizing its content.
func (a *Adapter) SaveObject(ctx context.Context, collection string, object store.Object) error {
	if object.ID == "" {
		return fmt.Errorf("cannot save object without id")
	}
	_, err := a.AddObjects(ctx, collection, []store.Object{object})
	return err
}

// DeleteObject removes a record by id.
func (a *Adapter) DeleteObject(ctx context.Context, collection, id string) error {
	wait := true
	_, err := a.client.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{qdrant.NewID(id)}},
			},
		},
		Wait: &wait,
	})
	if err != nil {
		return fmt.Errorf("[Qdrant] delete failed: %w", err)
	}
	return nil
}

// ListObjects returns an offset-paginated page of records.
//
// Unsorted listings use the points/query API, which supports a numeric
// offset. Sorted listings go through scroll with order_by, which does not, so
// offset+limit rows are fetched and the prefix discarded.
func (a *Adapter) ListObjects(ctx context.Context, collection string, page store.Page) ([]store.Object, error) {
	if page.Sort == "" {
		limit := uint64(page.Limit)
		offset := uint64(page.Offset)
		points, err := a.client.api.Query(ctx, &qdrant.QueryPoints{
			CollectionName: collection,
			Limit:          &limit,
			Offset:         &offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] list failed: %w", err)
		}
		return scoredToObjects(points, false)
	}

	direction := qdrant.Direction_Asc
	if page.Order == store.SortDesc {
		direction = qdrant.Direction_Desc
	}
	limit := uint32(page.Offset + page.Limit)
	points, err := a.client.api.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		OrderBy: &qdrant.OrderBy{
			Key:       page.Sort,
			Direction: &direction,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] sorted list failed: %w", err)
	}

	objects, err := retrievedToObjects(points)
	if err != nil {
		return nil, err
	}
	if int64(len(objects)) <= page.Offset {
		return nil, nil
	}
	return objects[page.Offset:], nil
}

// Query executes a composed structured + semantic query.
//
// Unranked queries page like ListObjects: numeric offset through the
// points/query API, field sorting through scroll with order_by.
func (a *Adapter) Query(ctx context.Context, collection string, query store.Query) ([]store.Object, error) {
	filter := convertFilterSets(query.Filters)

	if !query.Ranked() {
		limit := 1024
		if query.Limit != nil {
			limit = *query.Limit
		}

		if query.Sort != "" {
			direction := qdrant.Direction_Asc
			if query.Order == store.SortDesc {
				direction = qdrant.Direction_Desc
			}
			fetch := uint32(query.Offset + int64(limit))
			points, err := a.client.api.Scroll(ctx, &qdrant.ScrollPoints{
				CollectionName: collection,
				Filter:         filter,
				Limit:          &fetch,
				WithPayload:    qdrant.NewWithPayload(true),
				OrderBy: &qdrant.OrderBy{
					Key:       query.Sort,
					Direction: &direction,
				},
			})
			if err != nil {
				return nil, fmt.Errorf("[Qdrant] sorted filtered query failed: %w", err)
			}
			objects, err := retrievedToObjects(points)
			if err != nil {
				return nil, err
			}
			if int64(len(objects)) <= query.Offset {
				return nil, nil
			}
			return objects[query.Offset:], nil
		}

		lim := uint64(limit)
		offset := uint64(query.Offset)
		points, err := a.client.api.Query(ctx, &qdrant.QueryPoints{
			CollectionName: collection,
			Filter:         filter,
			Limit:          &lim,
			Offset:         &offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] filtered query failed: %w", err)
		}
		return scoredToObjects(points, false)
	}

	vector, err := a.embedConcept(ctx, collection, query.Concept)
	if err != nil {
		return nil, err
	}

	req := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if query.Limit != nil {
		limit := uint64(*query.Limit)
		req.Limit = &limit
	}
	if query.MaxDistance != nil {
		// Cosine distance d maps onto the similarity score s as d = 1 - s.
		threshold := 1 - *query.MaxDistance
		req.ScoreThreshold = &threshold
	}

	points, err := a.client.api.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] semantic query failed: %w", err)
	}

	objects, err := scoredToObjects(points, true)
	if err != nil {
		return nil, err
	}

	if query.Autocut != nil {
		objects = autocut(objects, *query.Autocut)
	}
	return objects, nil
}

// embedConcept vectorizes the search concept with the collection's
// vectorizer model.
func (a *Adapter) embedConcept(ctx context.Context, collection, concept string) ([]float32, error) {
	reg, ok := a.classes.Load(collection)
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", collection, store.ErrNoVectorizer)
	}
	class := reg.(store.Class)
	if class.Vectorizer == nil || a.vectorizer == nil {
		return nil, fmt.Errorf("collection %q: %w", collection, store.ErrNoVectorizer)
	}

	vectors, err := a.vectorizer.CreateEmbeddingsWithModel(ctx, []string{concept}, class.Vectorizer.Model)
	if err != nil {
		return nil, fmt.Errorf("embedding concept failed: %w", err)
	}
	return vectors[0], nil
}

// vectorize produces one vector per object. Collections without a vectorizer
// get the constant placeholder vector; vectorized collections embed the
// concatenated text of all non-skipped text properties.
func (a *Adapter) vectorize(ctx context.Context, collection string, objects []store.Object) ([][]float32, error) {
	var class store.Class
	if reg, ok := a.classes.Load(collection); ok {
		class = reg.(store.Class)
	}

	vectors := make([][]float32, len(objects))
	if class.Vectorizer == nil || a.vectorizer == nil {
		for i := range vectors {
			vectors[i] = []float32{0}
		}
		return vectors, nil
	}

	texts := make([]string, len(objects))
	for i, obj := range objects {
		texts[i] = vectorizableText(&class, obj.Properties)
	}

	embedded, err := a.vectorizer.CreateEmbeddingsWithModel(ctx, texts, class.Vectorizer.Model)
	if err != nil {
		return nil, fmt.Errorf("embedding batch failed: %w", err)
	}
	return embedded, nil
}

// vectorizableText concatenates the values of text properties not marked
// SkipVectorization, in declared order.
func vectorizableText(class *store.Class, props map[string]any) string {
	var text string
	for _, prop := range class.Properties {
		if prop.SkipVectorization {
			continue
		}
		if prop.DataType != store.DataTypeText {
			continue
		}
		if v, ok := props[prop.Name].(string); ok && v != "" {
			if text != "" {
				text += "\n"
			}
			text += v
		}
	}
	return text
}

// autocutGapTolerance absorbs floating-point rounding when comparing a gap
// against the average gap.
const autocutGapTolerance = 1e-9

// autocut keeps the leading distance-gap clusters of a ranked result list.
// A new cluster starts wherever the gap to the previous result exceeds the
// average gap across the whole list; results from cluster keep+1 onward are
// dropped.
func autocut(objects []store.Object, keep int) []store.Object {
	if keep <= 0 || len(objects) <= 1 {
		return objects
	}

	first := objects[0].Distance
	last := objects[len(objects)-1].Distance
	if first == nil || last == nil || *last == *first {
		return objects
	}
	avgGap := (*last - *first) / float64(len(objects)-1)
	// Evenly spaced results carry gaps that differ from the average only by
	// rounding noise; those must not open a cluster boundary.
	boundary := avgGap * (1 + autocutGapTolerance)

	clusters := 1
	for i := 1; i < len(objects); i++ {
		gap := *objects[i].Distance - *objects[i-1].Distance
		if gap > boundary {
			clusters++
			if clusters > keep {
				return objects[:i]
			}
		}
	}
	return objects
}

func scoredToObjects(points []*qdrant.ScoredPoint, ranked bool) ([]store.Object, error) {
	objects := make([]store.Object, 0, len(points))
	for _, p := range points {
		id, err := extractPointID(p.Id)
		if err != nil {
			return nil, err
		}
		obj := store.Object{ID: id, Properties: convertPayload(p.Payload)}
		if ranked {
			distance := float64(1 - p.Score)
			obj.Distance = &distance
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func retrievedToObjects(points []*qdrant.RetrievedPoint) ([]store.Object, error) {
	objects := make([]store.Object, 0, len(points))
	for _, p := range points {
		id, err := extractPointID(p.Id)
		if err != nil {
			return nil, err
		}
		objects = append(objects, store.Object{ID: id, Properties: convertPayload(p.Payload)})
	}
	return objects, nil
}
