// Package store provides a database-agnostic abstraction for a vector-capable
// record store.
//
// # Overview
//
// This package defines the common interface [Service] implemented by vector
// database adapters (Qdrant today, Weaviate or pgvector tomorrow), so that the
// repository and migration layers never import a database SDK directly.
//
// A store holds named collections. Each collection is bound to a [Class]
// describing its property set and, optionally, a vectorizer specification.
// Records are [Object] values: an opaque store-assigned id plus a property
// map. Ranked queries additionally populate Object.Distance from the store's
// side channel.
//
// # Usage
//
// Depend only on the interface:
//
//	type FactService struct {
//	    db store.Service
//	}
//
// and wire a concrete adapter in main:
//
//	svc := qdrant.NewAdapter(client, vectorizer, log)
//
// # Filters
//
// Structured filtering uses a small condition AST combined through
// [FilterSet] clauses:
//
//	store.NewFilterSet(
//	    store.Should(
//	        store.NewTimeRange("expiration", store.TimeRange{Gte: &now}),
//	        store.NewIsNull("expiration"),
//	    ),
//	)
//
// Multiple FilterSets passed to a [Query] are combined with AND.
package store
