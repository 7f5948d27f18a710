package store

// DataType is the store-level type of a class property.
type DataType string

const (
	DataTypeText      DataType = "text"
	DataTypeTextArray DataType = "text[]"
	DataTypeInt       DataType = "int"
	DataTypeNumber    DataType = "number"
	DataTypeBool      DataType = "boolean"
	DataTypeDate      DataType = "date"
	DataTypeGeo       DataType = "geoCoordinates"
)

// Property describes a single field of a collection class.
type Property struct {
	// Name is the property name as stored in the record payload.
	Name string `json:"name"`

	// DataType is the declared store type of the property.
	DataType DataType `json:"dataType"`

	// IndexSearchable requests a structured (filterable) index on the field.
	IndexSearchable bool `json:"indexSearchable,omitempty"`

	// SkipVectorization excludes this property from the class vectorizer
	// input. Meaningless when the class has no vectorizer.
	SkipVectorization bool `json:"skipVectorization,omitempty"`
}

// Vectorizer configures store-side embedding of a class.
// When nil on a Class, records are stored without vectors and
// concept queries against the collection fail.
type Vectorizer struct {
	// Model is the embedding model identifier (e.g. "text-embedding-3-large").
	Model string `json:"model"`

	// Dimensions is the embedding dimension the collection is created with.
	Dimensions uint64 `json:"dimensions"`
}

// Class describes the schema of one collection: its name, property set and
// optional vectorizer. Adapters create collections from a Class and report
// the store-visible schema back as a Class.
type Class struct {
	Name       string      `json:"name"`
	Properties []Property  `json:"properties"`
	Vectorizer *Vectorizer `json:"vectorizer,omitempty"`
}

// Property returns the declared property with the given name, or nil.
func (c *Class) Property(name string) *Property {
	for i := range c.Properties {
		if c.Properties[i].Name == name {
			return &c.Properties[i]
		}
	}
	return nil
}

// Object is a single stored record.
type Object struct {
	// ID is the store-assigned identity. Empty on objects that have not been
	// submitted yet; always populated on objects read back from the store.
	ID string `json:"id"`

	// Properties is the record payload keyed by property name.
	Properties map[string]any `json:"properties"`

	// Distance is the similarity distance side channel. It is populated only
	// on results of ranked queries and is never written to the store.
	Distance *float64 `json:"distance,omitempty"`
}

// SortOrder is the direction of a sorted listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Page describes an offset-paginated, optionally sorted listing.
type Page struct {
	Limit  int64  `json:"limit"`
	Offset int64  `json:"offset"`
	Sort   string `json:"sort,omitempty"`
	// Order is applied only when Sort is set; defaults to ascending.
	Order SortOrder `json:"order,omitempty"`
}

// Query is a composed structured + semantic query against one collection.
//
// When Concept is empty the query is predicate-only: results are unranked and
// Distance stays nil. When Concept is set the store vectorizes it and ranks
// results by ascending distance.
type Query struct {
	// Concept is the free-text search concept, vectorized store-side.
	Concept string `json:"concept,omitempty"`

	// MaxDistance drops ranked results beyond this similarity distance.
	MaxDistance *float32 `json:"maxDistance,omitempty"`

	// Limit is a hard cap on the number of results.
	Limit *int `json:"limit,omitempty"`

	// Offset skips leading results. Only meaningful on unranked queries.
	Offset int64 `json:"offset,omitempty"`

	// Sort orders unranked results by a payload field. Ignored when the
	// query is ranked; ranked results are always ordered by distance.
	Sort string `json:"sort,omitempty"`

	// Order is applied only when Sort is set; defaults to ascending.
	Order SortOrder `json:"order,omitempty"`

	// Autocut is the store-native autocut: the number of distance-gap
	// clusters to keep. Only meaningful on ranked queries.
	Autocut *int `json:"autocut,omitempty"`

	// Filters are combined with AND.
	Filters []*FilterSet `json:"filters,omitempty"`
}

// Ranked reports whether the query has a semantic-nearness clause.
func (q *Query) Ranked() bool {
	return q.Concept != ""
}
