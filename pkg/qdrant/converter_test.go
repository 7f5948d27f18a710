package qdrant

import (
	"testing"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

func TestConvertFilterSets_Empty(t *testing.T) {
	if result := convertFilterSets(nil); result != nil {
		t.Errorf("expected nil, got %v", result)
	}
	if result := convertFilterSets([]*store.FilterSet{}); result != nil {
		t.Errorf("expected nil, got %v", result)
	}
}

func TestConvertFilterSet_EmptyConditionSet(t *testing.T) {
	filters := store.NewFilterSet()
	filters.Must = &store.ConditionSet{}
	if result := convertFilterSet(filters); result != nil {
		t.Errorf("expected nil, got %v", result)
	}
}

func TestConvertFilterSet_MustWithMatch(t *testing.T) {
	filters := store.NewFilterSet(
		store.Must(store.NewMatch("factType", "faq")),
	)

	result := convertFilterSet(filters)

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 1 {
		t.Errorf("expected 1 Must condition, got %d", len(result.Must))
	}
	if len(result.Should) != 0 {
		t.Errorf("expected 0 Should conditions, got %d", len(result.Should))
	}
}

func TestConvertFilterSet_MixedClauses(t *testing.T) {
	// factType = "faq" AND (category = "a" OR category = "b") AND NOT citation IS NULL
	filters := store.NewFilterSet(
		store.Must(store.NewMatch("factType", "faq")),
		store.Should(
			store.NewMatch("category", "a"),
			store.NewMatch("category", "b"),
		),
		store.MustNot(store.NewIsNull("citation")),
	)

	result := convertFilterSet(filters)

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 1 {
		t.Errorf("expected 1 Must condition, got %d", len(result.Must))
	}
	if len(result.Should) != 2 {
		t.Errorf("expected 2 Should conditions, got %d", len(result.Should))
	}
	if len(result.MustNot) != 1 {
		t.Errorf("expected 1 MustNot condition, got %d", len(result.MustNot))
	}
}

func TestConvertFilterSets_MultipleSetsAreNested(t *testing.T) {
	a := store.NewFilterSet(store.Should(store.NewIsNull("expiration")))
	b := store.NewFilterSet(store.Must(store.NewMatchAny("factType", "faq", "memory")))

	result := convertFilterSets([]*store.FilterSet{a, b})

	if result == nil {
		t.Fatal("expected filter, got nil")
	}
	if len(result.Must) != 2 {
		t.Fatalf("expected 2 nested filters, got %d", len(result.Must))
	}
	for i, cond := range result.Must {
		if _, ok := cond.ConditionOneOf.(*qdrant.Condition_Filter); !ok {
			t.Errorf("condition %d: expected nested filter, got %T", i, cond.ConditionOneOf)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestConvertMatchCondition_ValueTypes(t *testing.T) {
	cases := []struct {
		name  string
		value any
		ok    bool
	}{
		{"string", "faq", true},
		{"bool", true, true},
		{"int", 42, true},
		{"int64", int64(42), true},
		{"float64", float64(42), true},
		{"time", time.Date(2027, 3, 1, 12, 0, 0, 0, time.UTC), true},
		{"timePtr", timePtr(time.Date(2027, 3, 1, 12, 0, 0, 0, time.UTC)), true},
		{"nilTimePtr", (*time.Time)(nil), false},
		{"unsupported", struct{}{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cond := convertMatchCondition(&store.MatchCondition{Field: "f", Value: tc.value})
			if tc.ok && cond == nil {
				t.Errorf("expected condition for %v, got nil", tc.value)
			}
			if !tc.ok && cond != nil {
				t.Errorf("expected nil for %v, got %v", tc.value, cond)
			}
		})
	}
}

func TestConvertTimeRangeCondition(t *testing.T) {
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cond := convertCondition(store.NewTimeRange("factAdded", store.TimeRange{Gte: &since}))
	if cond == nil {
		t.Fatal("expected condition, got nil")
	}

	empty := convertTimeRangeCondition(&store.TimeRangeCondition{Field: "factAdded"})
	if empty != nil {
		t.Errorf("expected nil for empty range, got %v", empty)
	}
}

func TestFieldTypeRoundTrip(t *testing.T) {
	cases := []struct {
		dt   store.DataType
		back store.DataType
	}{
		{store.DataTypeText, store.DataTypeText},
		// keyword indexes cannot distinguish scalar from array text
		{store.DataTypeTextArray, store.DataTypeText},
		{store.DataTypeInt, store.DataTypeInt},
		{store.DataTypeNumber, store.DataTypeNumber},
		{store.DataTypeBool, store.DataTypeBool},
		{store.DataTypeDate, store.DataTypeDate},
		{store.DataTypeGeo, store.DataTypeGeo},
	}

	schemaFor := map[qdrant.FieldType]qdrant.PayloadSchemaType{
		qdrant.FieldType_FieldTypeKeyword:  qdrant.PayloadSchemaType_Keyword,
		qdrant.FieldType_FieldTypeInteger:  qdrant.PayloadSchemaType_Integer,
		qdrant.FieldType_FieldTypeFloat:    qdrant.PayloadSchemaType_Float,
		qdrant.FieldType_FieldTypeBool:     qdrant.PayloadSchemaType_Bool,
		qdrant.FieldType_FieldTypeDatetime: qdrant.PayloadSchemaType_Datetime,
		qdrant.FieldType_FieldTypeGeo:      qdrant.PayloadSchemaType_Geo,
	}

	for _, tc := range cases {
		got := dataTypeFor(schemaFor[fieldTypeFor(tc.dt)])
		if got != tc.back {
			t.Errorf("%s: round-tripped to %s, expected %s", tc.dt, got, tc.back)
		}
	}
}

func TestNormalizeProperties(t *testing.T) {
	added := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	props := map[string]any{
		"factType":  "faq",
		"factAdded": added,
		"expiry":    (*time.Time)(nil),
		"tags":      []string{"a", "b"},
	}

	out := normalizeProperties(props)

	if out["factType"] != "faq" {
		t.Errorf("expected string passthrough, got %v", out["factType"])
	}
	if out["factAdded"] != added.Format(time.RFC3339Nano) {
		t.Errorf("expected RFC3339 time, got %v", out["factAdded"])
	}
	if out["expiry"] != nil {
		t.Errorf("expected nil for nil *time.Time, got %v", out["expiry"])
	}
	tags, ok := out["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Fatalf("expected 2-element []any, got %v", out["tags"])
	}
}

func TestConvertPayload_NestedValues(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"content": {Kind: &qdrant.Value_StringValue{StringValue: "hello"}},
		"count":   {Kind: &qdrant.Value_IntegerValue{IntegerValue: 3}},
		"ratio":   {Kind: &qdrant.Value_DoubleValue{DoubleValue: 0.5}},
		"active":  {Kind: &qdrant.Value_BoolValue{BoolValue: true}},
		"missing": {Kind: &qdrant.Value_NullValue{}},
		"tags": {Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{
			Values: []*qdrant.Value{
				{Kind: &qdrant.Value_StringValue{StringValue: "a"}},
				{Kind: &qdrant.Value_StringValue{StringValue: "b"}},
			},
		}}},
	}

	out := convertPayload(payload)

	if out["content"] != "hello" {
		t.Errorf("expected 'hello', got %v", out["content"])
	}
	if out["count"] != int64(3) {
		t.Errorf("expected int64(3), got %v", out["count"])
	}
	if out["ratio"] != 0.5 {
		t.Errorf("expected 0.5, got %v", out["ratio"])
	}
	if out["active"] != true {
		t.Errorf("expected true, got %v", out["active"])
	}
	if out["missing"] != nil {
		t.Errorf("expected nil, got %v", out["missing"])
	}
	tags, ok := out["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" {
		t.Errorf("expected [a b], got %v", out["tags"])
	}
}

func TestExtractPointID(t *testing.T) {
	id, err := extractPointID(&qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: "abc"}})
	if err != nil || id != "abc" {
		t.Errorf("expected 'abc', got %q (%v)", id, err)
	}

	id, err = extractPointID(&qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: 7}})
	if err != nil || id != "7" {
		t.Errorf("expected '7', got %q (%v)", id, err)
	}

	if _, err := extractPointID(nil); err == nil {
		t.Error("expected error for nil id")
	}
}
