package oraculum

import (
	"context"
	"time"

	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// FindRelevantFacts ranks unexpired facts by similarity to concept, narrowed
// by the filter. Results arrive ordered by ascending distance with Distance
// populated; store-native autocut and client-side autocut-by-percentage are
// applied in that order.
func (o *Oraculum) FindRelevantFacts(ctx context.Context, concept string, filter *FactFilter) ([]*Fact, error) {
	if err := o.ensureConnected(); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &FactFilter{}
	}

	ctx, span := o.startSpan(ctx, "oraculum.FindRelevantFacts")
	defer span.End()
	defer o.observeQuery(true, time.Now())

	o.log.Debug("finding relevant facts", nil, map[string]interface{}{"concept": concept})

	q := store.Query{
		Concept:     concept,
		MaxDistance: filter.Distance,
		Limit:       filter.Limit,
		Autocut:     filter.Autocut,
		Filters:     buildFactFilters(filter, time.Now()),
	}

	facts, err := o.facts.Collection().query(ctx, q)
	o.countOp("find-relevant", FactClassName, err)
	if err != nil {
		o.recordError(span, err)
		return nil, err
	}

	if filter.AutocutPercentage != nil {
		facts = autocutByPercentage(facts, *filter.AutocutPercentage)
	}
	return facts, nil
}

// ListFilteredFacts returns unexpired facts matching the filter, without
// ranking. Autocut settings are meaningless without a ranking and are
// ignored with a warning.
func (o *Oraculum) ListFilteredFacts(ctx context.Context, filter *FactFilter) ([]*Fact, error) {
	if err := o.ensureConnected(); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &FactFilter{}
	}

	defer o.observeQuery(false, time.Now())

	if filter.Autocut != nil {
		o.log.Warn("autocut is ignored on unranked listings", nil)
	}
	if filter.AutocutPercentage != nil {
		o.log.Warn("autocut percentage is ignored on unranked listings", nil)
	}

	q := store.Query{
		Limit:   filter.Limit,
		Filters: buildFactFilters(filter, time.Now()),
	}

	facts, err := o.facts.Collection().query(ctx, q)
	o.countOp("list-filtered", FactClassName, err)
	return facts, err
}

// buildFactFilters composes the structured predicate for a fact query. The
// validity-window predicate is always present: a fact matches when its
// expiration lies at or after now, or is unset. The remaining dimensions are
// conjoined with it and with each other; within one dimension the given
// values are alternatives.
func buildFactFilters(filter *FactFilter, now time.Time) []*store.FilterSet {
	filters := []*store.FilterSet{
		store.NewFilterSet(store.Should(
			store.NewTimeRange("expiration", store.TimeRange{Gte: &now}),
			store.NewIsNull("expiration"),
		)),
	}

	var must []store.FilterCondition
	if filter.AddedSince != nil {
		must = append(must, store.NewTimeRange("factAdded", store.TimeRange{Gte: filter.AddedSince}))
	}
	if len(filter.FactTypeFilter) > 0 {
		must = append(must, store.NewMatchAny("factType", filter.FactTypeFilter...))
	}
	if len(filter.CategoryFilter) > 0 {
		must = append(must, store.NewMatchAny("category", filter.CategoryFilter...))
	}
	if len(filter.TagsFilter) > 0 {
		must = append(must, store.NewMatchAny("tags", filter.TagsFilter...))
	}
	if len(must) > 0 {
		filters = append(filters, store.NewFilterSet(store.Must(must...)))
	}

	return filters
}

// autocutByPercentage keeps the longest prefix of a distance-ordered result
// whose normalized distance (relative to the min/max over the whole set)
// stays below the threshold. When every result sits at the same distance the
// fraction is taken as zero and everything is kept.
func autocutByPercentage(facts []*Fact, threshold float64) []*Fact {
	if len(facts) == 0 {
		return facts
	}

	first := facts[0].Distance
	last := facts[len(facts)-1].Distance
	if first == nil || last == nil || *first == *last {
		return facts
	}
	span := *last - *first

	keep := 0
	for _, fact := range facts {
		if fact.Distance == nil {
			break
		}
		if (*fact.Distance-*first)/span >= threshold {
			break
		}
		keep++
	}
	return facts[:keep]
}
