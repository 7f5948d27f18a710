package oraculum

import "time"

// Application and schema versions. The schema version is persisted in the
// configuration record and compared against SchemaMajorVersion/
// SchemaMinorVersion on every Connect.
const (
	MajorVersion = 1
	MinorVersion = 0

	SchemaMajorVersion = 1
	SchemaMinorVersion = 2
)

// Collection names in the backing store.
const (
	FactClassName          = "Facts"
	ConfigClassName        = "OraculumConfig"
	GenericObjectClassName = "GenericObject"
)

// ConfigID is the fixed identity of the singleton configuration record.
const ConfigID = "afc7b344-6c26-4b72-9fbb-0df1acf26c5a"

// GeoCoordinates is a WGS84 point.
type GeoCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Fact is the primary knowledge record.
//
// ID is assigned by the store on creation and must not be set by callers.
// Distance is populated only on results of relevance queries and is never
// persisted. All other optional fields use pointer types to distinguish
// "unset" from a zero value, which matters in particular for Expiration.
type Fact struct {
	ID       string   `json:"id,omitempty"`
	Distance *float64 `json:"distance,omitempty"`

	FactType   string     `json:"factType,omitempty"`
	Category   string     `json:"category,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Title      string     `json:"title,omitempty"`
	Content    string     `json:"content,omitempty"`
	Citation   string     `json:"citation,omitempty"`
	Reference  string     `json:"reference,omitempty"`
	Expiration *time.Time `json:"expiration,omitempty"`

	Location         *GeoCoordinates `json:"location,omitempty"`
	LocationDistance *float64        `json:"locationDistance,omitempty"`
	LocationName     *string         `json:"locationName,omitempty"`
	EditPrincipals   []string        `json:"editPrincipals,omitempty"`
	ValidFrom        *string         `json:"validFrom,omitempty"`
	ValidTo          *string         `json:"validTo,omitempty"`
	FactAdded        *time.Time      `json:"factAdded,omitempty"`
}

// Config is the singleton configuration record persisted in the store under
// ConfigID. It records which schema generation the fact collection was
// written with; version skew against the compiled-in schema version triggers
// a migration on Connect.
type Config struct {
	ID string `json:"id,omitempty"`

	MajorVersion       int       `json:"majorVersion"`
	MinorVersion       int       `json:"minorVersion"`
	SchemaMajorVersion int       `json:"schemaMajorVersion"`
	SchemaMinorVersion int       `json:"schemaMinorVersion"`
	CreationDate       time.Time `json:"creationDate"`
}

// GenericObject is a minimal secondary record: free content plus a
// timestamp. It exists to exercise the same repository machinery as Fact
// with a second entity type.
type GenericObject struct {
	ID        string     `json:"id,omitempty"`
	Content   *string    `json:"content,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// FactFilter narrows relevance queries and filtered listings. All fields are
// optional; the zero filter matches every unexpired fact.
type FactFilter struct {
	// Limit caps the number of returned results.
	Limit *int

	// Distance is the maximum similarity distance for ranked queries.
	Distance *float32

	// Autocut keeps only the leading distance-gap clusters of a ranked
	// result. Ignored, with a warning, on predicate-only listings.
	Autocut *int

	// AutocutPercentage truncates a ranked result at the first record whose
	// normalized distance reaches the threshold. Ignored, with a warning,
	// on predicate-only listings.
	AutocutPercentage *float64

	// FactTypeFilter matches facts whose type is any of the given values.
	FactTypeFilter []string

	// CategoryFilter matches facts whose category is any of the given values.
	CategoryFilter []string

	// TagsFilter matches facts carrying any of the given tags.
	TagsFilter []string

	// AddedSince excludes facts recorded before the given instant.
	AddedSince *time.Time
}
