// Package oraculum manages a versioned collection of fact records in a
// vector-capable store, with semantic retrieval, structured filtering and
// in-place schema evolution across releases.
//
// The package is organized around four cooperating pieces:
//
//   - Descriptor statically maps each entity type (Fact, Config,
//     GenericObject) onto its backing collection: field names, store types,
//     vectorization flags and the codec between the entity and a store
//     payload.
//   - Collection and Repository provide the typed data path: lazy
//     create-or-reconcile binding of the collection (concurrent first use
//     issues exactly one create), then uniform add/get/list/update/delete
//     and validated query-by-property operations.
//   - BackupEngine streams a collection to and from a length-prefixed batch
//     format, with a reconciliation loop that resubmits rows the store
//     failed to acknowledge. VersionManager builds migrations on it: export
//     the old collection, replace it, lift every record with the transform
//     for its source schema generation, re-import, and only then bump the
//     persisted schema version.
//   - The query composer behind FindRelevantFacts and ListFilteredFacts
//     combines the always-on validity-window predicate with categorical,
//     tag and recency filters, and truncates ranked results with store-native
//     autocut or client-side autocut-by-percentage.
//
// Basic usage:
//
//	svc := // a store.Service, e.g. the qdrant adapter
//	orc, err := oraculum.New(oraculum.Configuration{UserName: "alice"}, svc, log, nil, nil)
//	if err != nil {
//		return err
//	}
//	if err := orc.Connect(ctx); err != nil {
//		return err
//	}
//
//	id, err := orc.AddFact(ctx, &oraculum.Fact{
//		FactType: "faq",
//		Category: "support",
//		Content:  "Restarting the agent clears the cache.",
//	})
//
//	hits, err := orc.FindRelevantFacts(ctx, "how do I clear the cache?", &oraculum.FactFilter{
//		CategoryFilter: []string{"support"},
//	})
//
// Error handling:
//
// Transport failures surface as *StoreError with the cause attached; usage
// violations as *SchemaMismatchError; update and delete flows addressing
// absent records as ErrNotFound; and a store whose persisted version
// disagrees with its actual collections (the footprint of an interrupted
// migration) as ErrInconsistentSchema. Get paths report absence as an
// explicit nil result, never as an error.
package oraculum
