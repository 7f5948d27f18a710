package oraculum

import (
	"time"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// Descriptor statically maps an entity type onto its backing collection: the
// collection class (name, fields, vectorizer) plus the codec translating
// between the entity and a store property map. The identity field and the
// distance side channel are deliberately absent from the class property set;
// they travel outside the payload.
type Descriptor[T any] struct {
	Class store.Class

	// Encode produces the store payload for an entity. Unset optional
	// fields are omitted from the map.
	Encode func(*T) map[string]any

	// Decode rehydrates an entity from a store payload.
	Decode func(props map[string]any, out *T)

	// ID accessors.
	GetID func(*T) string
	SetID func(*T, string)

	// SetDistance attaches the ranked-query distance side channel. Nil for
	// entity types that are never queried by similarity.
	SetDistance func(*T, *float64)
}

// NewDescriptor validates a descriptor. A descriptor whose class declares no
// attribute fields is unusable and rejected with a DescriptorError.
func NewDescriptor[T any](d Descriptor[T]) (Descriptor[T], error) {
	if len(d.Class.Properties) == 0 {
		return d, &DescriptorError{Class: d.Class.Name, Reason: "no attribute fields declared"}
	}
	return d, nil
}

// ── Fact ─────────────────────────────────────────────────────────────────────

// factClass is the current-generation fact schema. Content is embedded for
// similarity search; editPrincipals is excluded from vectorization.
var factClass = store.Class{
	Name: FactClassName,
	Properties: []store.Property{
		{Name: "factType", DataType: store.DataTypeText, IndexSearchable: true, SkipVectorization: true},
		{Name: "category", DataType: store.DataTypeText, IndexSearchable: true, SkipVectorization: true},
		{Name: "tags", DataType: store.DataTypeTextArray, IndexSearchable: true, SkipVectorization: true},
		{Name: "title", DataType: store.DataTypeText, SkipVectorization: true},
		{Name: "content", DataType: store.DataTypeText},
		{Name: "citation", DataType: store.DataTypeText, SkipVectorization: true},
		{Name: "reference", DataType: store.DataTypeText, SkipVectorization: true},
		{Name: "expiration", DataType: store.DataTypeDate, IndexSearchable: true, SkipVectorization: true},
		{Name: "location", DataType: store.DataTypeGeo, SkipVectorization: true},
		{Name: "locationDistance", DataType: store.DataTypeNumber, SkipVectorization: true},
		{Name: "locationName", DataType: store.DataTypeText, SkipVectorization: true},
		{Name: "editPrincipals", DataType: store.DataTypeTextArray, SkipVectorization: true},
		{Name: "validFrom", DataType: store.DataTypeText, SkipVectorization: true},
		{Name: "validTo", DataType: store.DataTypeText, SkipVectorization: true},
		{Name: "factAdded", DataType: store.DataTypeDate, IndexSearchable: true, SkipVectorization: true},
	},
	Vectorizer: &store.Vectorizer{Model: "text-embedding-3-large", Dimensions: 3072},
}

// factDescriptor is the static codec for the current Fact schema.
var factDescriptor = Descriptor[Fact]{
	Class: factClass,
	Encode: func(f *Fact) map[string]any {
		props := map[string]any{}
		putString(props, "factType", f.FactType)
		putString(props, "category", f.Category)
		putStrings(props, "tags", f.Tags)
		putString(props, "title", f.Title)
		putString(props, "content", f.Content)
		putString(props, "citation", f.Citation)
		putString(props, "reference", f.Reference)
		putTime(props, "expiration", f.Expiration)
		if f.Location != nil {
			props["location"] = map[string]any{
				"latitude":  f.Location.Latitude,
				"longitude": f.Location.Longitude,
			}
		}
		if f.LocationDistance != nil {
			props["locationDistance"] = *f.LocationDistance
		}
		if f.LocationName != nil {
			props["locationName"] = *f.LocationName
		}
		putStrings(props, "editPrincipals", f.EditPrincipals)
		if f.ValidFrom != nil {
			props["validFrom"] = *f.ValidFrom
		}
		if f.ValidTo != nil {
			props["validTo"] = *f.ValidTo
		}
		putTime(props, "factAdded", f.FactAdded)
		return props
	},
	Decode: func(props map[string]any, f *Fact) {
		f.FactType = getString(props, "factType")
		f.Category = getString(props, "category")
		f.Tags = getStrings(props, "tags")
		f.Title = getString(props, "title")
		f.Content = getString(props, "content")
		f.Citation = getString(props, "citation")
		f.Reference = getString(props, "reference")
		f.Expiration = getTime(props, "expiration")
		f.Location = getGeo(props, "location")
		f.LocationDistance = getFloat(props, "locationDistance")
		f.LocationName = getStringPtr(props, "locationName")
		f.EditPrincipals = getStrings(props, "editPrincipals")
		f.ValidFrom = getStringPtr(props, "validFrom")
		f.ValidTo = getStringPtr(props, "validTo")
		f.FactAdded = getTime(props, "factAdded")
	},
	GetID:       func(f *Fact) string { return f.ID },
	SetID:       func(f *Fact, id string) { f.ID = id },
	SetDistance: func(f *Fact, d *float64) { f.Distance = d },
}

// ── Config ───────────────────────────────────────────────────────────────────

var configClass = store.Class{
	Name: ConfigClassName,
	Properties: []store.Property{
		{Name: "majorVersion", DataType: store.DataTypeInt},
		{Name: "minorVersion", DataType: store.DataTypeInt},
		{Name: "schemaMajorVersion", DataType: store.DataTypeInt},
		{Name: "schemaMinorVersion", DataType: store.DataTypeInt},
		{Name: "creationDate", DataType: store.DataTypeDate},
	},
}

var configDescriptor = Descriptor[Config]{
	Class: configClass,
	Encode: func(c *Config) map[string]any {
		return map[string]any{
			"majorVersion":       int64(c.MajorVersion),
			"minorVersion":       int64(c.MinorVersion),
			"schemaMajorVersion": int64(c.SchemaMajorVersion),
			"schemaMinorVersion": int64(c.SchemaMinorVersion),
			"creationDate":       c.CreationDate,
		}
	},
	Decode: func(props map[string]any, c *Config) {
		c.MajorVersion = getInt(props, "majorVersion")
		c.MinorVersion = getInt(props, "minorVersion")
		c.SchemaMajorVersion = getInt(props, "schemaMajorVersion")
		c.SchemaMinorVersion = getInt(props, "schemaMinorVersion")
		if t := getTime(props, "creationDate"); t != nil {
			c.CreationDate = *t
		}
	},
	GetID: func(c *Config) string { return c.ID },
	SetID: func(c *Config, id string) { c.ID = id },
}

// ── GenericObject ────────────────────────────────────────────────────────────

var genericObjectClass = store.Class{
	Name: GenericObjectClassName,
	Properties: []store.Property{
		{Name: "content", DataType: store.DataTypeText, IndexSearchable: true},
		{Name: "timestamp", DataType: store.DataTypeDate},
	},
}

var genericObjectDescriptor = Descriptor[GenericObject]{
	Class: genericObjectClass,
	Encode: func(o *GenericObject) map[string]any {
		props := map[string]any{}
		if o.Content != nil {
			props["content"] = *o.Content
		}
		putTime(props, "timestamp", o.Timestamp)
		return props
	},
	Decode: func(props map[string]any, o *GenericObject) {
		o.Content = getStringPtr(props, "content")
		o.Timestamp = getTime(props, "timestamp")
	},
	GetID: func(o *GenericObject) string { return o.ID },
	SetID: func(o *GenericObject, id string) { o.ID = id },
}

// ── Payload Helpers ──────────────────────────────────────────────────────────

func putString(props map[string]any, key, v string) {
	if v != "" {
		props[key] = v
	}
}

func putStrings(props map[string]any, key string, v []string) {
	if len(v) > 0 {
		props[key] = v
	}
}

func putTime(props map[string]any, key string, v *time.Time) {
	if v != nil {
		props[key] = *v
	}
}

func getString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func getStringPtr(props map[string]any, key string) *string {
	if v, ok := props[key].(string); ok {
		return &v
	}
	return nil
}

func getStrings(props map[string]any, key string) []string {
	switch v := props[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func getInt(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func getFloat(props map[string]any, key string) *float64 {
	switch v := props[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	}
	return nil
}

// getTime accepts both native time values and the RFC3339 strings adapters
// store them as.
func getTime(props map[string]any, key string) *time.Time {
	switch v := props[key].(type) {
	case time.Time:
		return &v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
	}
	return nil
}

func getGeo(props map[string]any, key string) *GeoCoordinates {
	m, ok := props[key].(map[string]any)
	if !ok {
		return nil
	}
	geo := &GeoCoordinates{}
	if lat := getFloat(m, "latitude"); lat != nil {
		geo.Latitude = *lat
	}
	if lon := getFloat(m, "longitude"); lon != nil {
		geo.Longitude = *lon
	}
	return geo
}
