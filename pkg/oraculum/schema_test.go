package oraculum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

func TestNewDescriptorRejectsEmptyFieldSet(t *testing.T) {
	_, err := NewDescriptor(Descriptor[struct{}]{
		Class: store.Class{Name: "Empty"},
	})
	var derr *DescriptorError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Empty", derr.Class)
}

func TestFactCodecRoundTrip(t *testing.T) {
	fact := sampleFact()
	fact.EditPrincipals = []string{"O:alice"}
	from := "2024-01-01"
	fact.ValidFrom = &from

	props := factDescriptor.Encode(fact)

	_, hasID := props["id"]
	assert.False(t, hasID, "identity must not travel in the payload")
	_, hasDistance := props["distance"]
	assert.False(t, hasDistance, "distance must not travel in the payload")

	decoded := &Fact{}
	factDescriptor.Decode(props, decoded)

	assert.Equal(t, fact.FactType, decoded.FactType)
	assert.Equal(t, fact.Tags, decoded.Tags)
	assert.Equal(t, fact.EditPrincipals, decoded.EditPrincipals)
	assert.Equal(t, *fact.ValidFrom, *decoded.ValidFrom)
	require.NotNil(t, decoded.Expiration)
	assert.True(t, fact.Expiration.Equal(*decoded.Expiration))
	require.NotNil(t, decoded.Location)
	assert.Equal(t, *fact.Location, *decoded.Location)
}

func TestFactCodecOmitsUnsetOptionals(t *testing.T) {
	props := factDescriptor.Encode(&Fact{Content: "only content"})

	assert.Equal(t, map[string]any{"content": "only content"}, props)

	decoded := &Fact{}
	factDescriptor.Decode(props, decoded)
	assert.Nil(t, decoded.Expiration)
	assert.Nil(t, decoded.Location)
	assert.Nil(t, decoded.FactAdded)
	assert.Nil(t, decoded.Tags)
}

func TestFactCodecDecodesWireFormats(t *testing.T) {
	// Adapters and the backup stream deliver dates as RFC3339 strings and
	// string sets as generic slices.
	decoded := &Fact{}
	factDescriptor.Decode(map[string]any{
		"factType":  "faq",
		"tags":      []any{"a", "b"},
		"factAdded": "2026-03-01T12:30:00Z",
	}, decoded)

	assert.Equal(t, []string{"a", "b"}, decoded.Tags)
	require.NotNil(t, decoded.FactAdded)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), decoded.FactAdded.UTC())
}

func TestConfigCodecRoundTrip(t *testing.T) {
	cfg := &Config{
		ID:                 ConfigID,
		MajorVersion:       1,
		MinorVersion:       0,
		SchemaMajorVersion: 1,
		SchemaMinorVersion: 2,
		CreationDate:       time.Now().UTC().Truncate(time.Second),
	}

	decoded := &Config{}
	configDescriptor.Decode(configDescriptor.Encode(cfg), decoded)

	assert.Equal(t, cfg.SchemaMajorVersion, decoded.SchemaMajorVersion)
	assert.Equal(t, cfg.SchemaMinorVersion, decoded.SchemaMinorVersion)
	assert.True(t, cfg.CreationDate.Equal(decoded.CreationDate))
}

func TestFactClassVectorizationFlags(t *testing.T) {
	content := factClass.Property("content")
	require.NotNil(t, content)
	assert.False(t, content.SkipVectorization, "content is the embedded field")

	principals := factClass.Property("editPrincipals")
	require.NotNil(t, principals)
	assert.True(t, principals.SkipVectorization, "ownership tags must not leak into the embedding")

	expiration := factClass.Property("expiration")
	require.NotNil(t, expiration)
	assert.True(t, expiration.IndexSearchable)

	require.NotNil(t, factClass.Vectorizer)
	assert.Equal(t, "text-embedding-3-large", factClass.Vectorizer.Model)
}
