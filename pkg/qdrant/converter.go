package qdrant

import (
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// ── Filter Conversion ────────────────────────────────────────────────────────

// convertFilterSets converts an array of FilterSets to a single Qdrant filter.
// Multiple filter sets are combined with AND logic (all must match).
func convertFilterSets(filters []*store.FilterSet) *qdrant.Filter {
	if len(filters) == 0 {
		return nil
	}

	if len(filters) == 1 {
		return convertFilterSet(filters[0])
	}

	var allConditions []*qdrant.Condition
	for _, fs := range filters {
		converted := convertFilterSet(fs)
		if converted != nil {
			allConditions = append(allConditions, &qdrant.Condition{
				ConditionOneOf: &qdrant.Condition_Filter{Filter: converted},
			})
		}
	}

	if len(allConditions) == 0 {
		return nil
	}

	return &qdrant.Filter{Must: allConditions}
}

// convertFilterSet converts a store.FilterSet to a Qdrant filter.
func convertFilterSet(filters *store.FilterSet) *qdrant.Filter {
	if filters == nil {
		return nil
	}

	filter := &qdrant.Filter{}

	if filters.Must != nil {
		filter.Must = convertConditionSet(filters.Must)
	}
	if filters.Should != nil {
		filter.Should = convertConditionSet(filters.Should)
	}
	if filters.MustNot != nil {
		filter.MustNot = convertConditionSet(filters.MustNot)
	}

	if len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0 {
		return nil
	}

	return filter
}

func convertConditionSet(cs *store.ConditionSet) []*qdrant.Condition {
	if cs == nil {
		return nil
	}

	var conditions []*qdrant.Condition
	for _, c := range cs.Conditions {
		if cond := convertCondition(c); cond != nil {
			conditions = append(conditions, cond)
		}
	}
	return conditions
}

func convertCondition(c store.FilterCondition) *qdrant.Condition {
	switch cond := c.(type) {
	case *store.MatchCondition:
		return convertMatchCondition(cond)
	case *store.MatchAnyCondition:
		return convertMatchAnyCondition(cond)
	case *store.NumericRangeCondition:
		return convertNumericRangeCondition(cond)
	case *store.TimeRangeCondition:
		return convertTimeRangeCondition(cond)
	case *store.IsNullCondition:
		return qdrant.NewIsNull(cond.Field)
	default:
		return nil
	}
}

func convertMatchCondition(c *store.MatchCondition) *qdrant.Condition {
	switch v := c.Value.(type) {
	case string:
		return qdrant.NewMatch(c.Field, v)
	case bool:
		return qdrant.NewMatchBool(c.Field, v)
	case int:
		return qdrant.NewMatchInt(c.Field, int64(v))
	case int64:
		return qdrant.NewMatchInt(c.Field, v)
	case float64:
		// JSON numbers decode as float64.
		return qdrant.NewMatchInt(c.Field, int64(v))
	case time.Time:
		// Qdrant has no datetime match; a degenerate range is equivalent.
		return qdrant.NewDatetimeRange(c.Field, &qdrant.DatetimeRange{
			Gte: timestamppb.New(v),
			Lte: timestamppb.New(v),
		})
	case *time.Time:
		if v == nil {
			return nil
		}
		return qdrant.NewDatetimeRange(c.Field, &qdrant.DatetimeRange{
			Gte: timestamppb.New(*v),
			Lte: timestamppb.New(*v),
		})
	default:
		return nil
	}
}

func convertMatchAnyCondition(c *store.MatchAnyCondition) *qdrant.Condition {
	if len(c.Values) == 0 {
		return nil
	}

	switch c.Values[0].(type) {
	case string:
		strs := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			if s, ok := v.(string); ok {
				strs = append(strs, s)
			}
		}
		return qdrant.NewMatchKeywords(c.Field, strs...)
	case int, int64, float64:
		ints := make([]int64, 0, len(c.Values))
		for _, v := range c.Values {
			switch n := v.(type) {
			case int:
				ints = append(ints, int64(n))
			case int64:
				ints = append(ints, n)
			case float64:
				ints = append(ints, int64(n))
			}
		}
		return qdrant.NewMatchInts(c.Field, ints...)
	}
	return nil
}

func convertNumericRangeCondition(c *store.NumericRangeCondition) *qdrant.Condition {
	r := &qdrant.Range{
		Gt:  c.Range.Gt,
		Gte: c.Range.Gte,
		Lt:  c.Range.Lt,
		Lte: c.Range.Lte,
	}

	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil
	}

	return qdrant.NewRange(c.Field, r)
}

func convertTimeRangeCondition(c *store.TimeRangeCondition) *qdrant.Condition {
	r := &qdrant.DatetimeRange{
		Gt:  toTimestamp(c.Range.Gt),
		Gte: toTimestamp(c.Range.Gte),
		Lt:  toTimestamp(c.Range.Lt),
		Lte: toTimestamp(c.Range.Lte),
	}

	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil
	}

	return qdrant.NewDatetimeRange(c.Field, r)
}

func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

// ── Schema Conversion ────────────────────────────────────────────────────────

// fieldTypeFor maps a store data type onto the Qdrant payload index type.
func fieldTypeFor(dt store.DataType) qdrant.FieldType {
	switch dt {
	case store.DataTypeText, store.DataTypeTextArray:
		return qdrant.FieldType_FieldTypeKeyword
	case store.DataTypeInt:
		return qdrant.FieldType_FieldTypeInteger
	case store.DataTypeNumber:
		return qdrant.FieldType_FieldTypeFloat
	case store.DataTypeBool:
		return qdrant.FieldType_FieldTypeBool
	case store.DataTypeDate:
		return qdrant.FieldType_FieldTypeDatetime
	case store.DataTypeGeo:
		return qdrant.FieldType_FieldTypeGeo
	default:
		return qdrant.FieldType_FieldTypeKeyword
	}
}

// dataTypeFor maps a Qdrant payload schema type back to the store data type.
// Keyword indexes cannot distinguish scalar from array text fields, so both
// report as text; schema diffing only compares property names.
func dataTypeFor(t qdrant.PayloadSchemaType) store.DataType {
	switch t {
	case qdrant.PayloadSchemaType_Keyword, qdrant.PayloadSchemaType_Text:
		return store.DataTypeText
	case qdrant.PayloadSchemaType_Integer:
		return store.DataTypeInt
	case qdrant.PayloadSchemaType_Float:
		return store.DataTypeNumber
	case qdrant.PayloadSchemaType_Bool:
		return store.DataTypeBool
	case qdrant.PayloadSchemaType_Datetime:
		return store.DataTypeDate
	case qdrant.PayloadSchemaType_Geo:
		return store.DataTypeGeo
	default:
		return store.DataTypeText
	}
}

// ── Payload Conversion ───────────────────────────────────────────────────────

// normalizeProperties prepares a property map for qdrant.NewValueMap:
// times become RFC3339 strings and string slices become generic slices.
func normalizeProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch t := v.(type) {
		case time.Time:
			out[k] = t.Format(time.RFC3339Nano)
		case *time.Time:
			if t == nil {
				out[k] = nil
			} else {
				out[k] = t.Format(time.RFC3339Nano)
			}
		case []string:
			anys := make([]any, len(t))
			for i, s := range t {
				anys[i] = s
			}
			out[k] = anys
		default:
			out[k] = v
		}
	}
	return out
}

// convertPayload converts Qdrant's protobuf payload to a generic map.
func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

// extractValue recursively converts a Qdrant Value to a Go native type.
func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = extractValue(item)
		}
		return items
	default:
		return nil
	}
}

// extractPointID extracts a string ID from Qdrant's PointId type.
func extractPointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("nil point ID")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("unexpected PointId type: %T", v)
	}
}
