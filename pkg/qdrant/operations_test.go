package qdrant

import (
	"testing"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

func rankedObjects(distances ...float64) []store.Object {
	objects := make([]store.Object, len(distances))
	for i := range distances {
		d := distances[i]
		objects[i] = store.Object{ID: "obj", Distance: &d}
	}
	return objects
}

func TestAutocut_KeepsLeadingCluster(t *testing.T) {
	// Tight cluster at the front, one outlier far behind it.
	objects := autocut(rankedObjects(0.10, 0.11, 0.12, 0.80), 1)
	if len(objects) != 3 {
		t.Errorf("expected 3 results, got %d", len(objects))
	}
}

func TestAutocut_KeepTwoClusters(t *testing.T) {
	objects := autocut(rankedObjects(0.10, 0.11, 0.40, 0.41, 0.90), 2)
	if len(objects) != 4 {
		t.Errorf("expected 4 results, got %d", len(objects))
	}
}

func TestAutocut_UniformDistancesKeepEverything(t *testing.T) {
	objects := autocut(rankedObjects(0.1, 0.2, 0.3, 0.4), 1)
	if len(objects) != 4 {
		t.Errorf("expected all 4 results, got %d", len(objects))
	}
}

func TestAutocut_ToleratesRoundingNoiseInGaps(t *testing.T) {
	// Repeated float addition yields gaps that differ from the average only
	// in the last bits; no boundary must open on them.
	distances := make([]float64, 8)
	d := 0.1
	for i := range distances {
		distances[i] = d
		d += 0.1
	}

	objects := autocut(rankedObjects(distances...), 1)
	if len(objects) != len(distances) {
		t.Errorf("expected all %d results, got %d", len(distances), len(objects))
	}
}

func TestAutocut_EqualDistancesKeepEverything(t *testing.T) {
	objects := autocut(rankedObjects(0.5, 0.5, 0.5), 1)
	if len(objects) != 3 {
		t.Errorf("expected all 3 results, got %d", len(objects))
	}
}

func TestAutocut_Disabled(t *testing.T) {
	objects := autocut(rankedObjects(0.1, 0.9), 0)
	if len(objects) != 2 {
		t.Errorf("expected passthrough, got %d results", len(objects))
	}
}

func TestVectorizableText(t *testing.T) {
	class := &store.Class{
		Name: "Facts",
		Properties: []store.Property{
			{Name: "factType", DataType: store.DataTypeText, SkipVectorization: true},
			{Name: "content", DataType: store.DataTypeText},
			{Name: "title", DataType: store.DataTypeText},
			{Name: "tags", DataType: store.DataTypeTextArray},
		},
	}

	text := vectorizableText(class, map[string]any{
		"factType": "faq",
		"content":  "the answer",
		"title":    "the question",
		"tags":     []string{"a"},
	})

	if text != "the answer\nthe question" {
		t.Errorf("unexpected vectorizable text: %q", text)
	}
}

func TestVectorizableText_MissingValues(t *testing.T) {
	class := &store.Class{
		Name: "Facts",
		Properties: []store.Property{
			{Name: "content", DataType: store.DataTypeText},
			{Name: "title", DataType: store.DataTypeText},
		},
	}

	text := vectorizableText(class, map[string]any{"title": "only title"})
	if text != "only title" {
		t.Errorf("unexpected vectorizable text: %q", text)
	}
}
