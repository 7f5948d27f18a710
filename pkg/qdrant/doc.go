// Package qdrant implements the store.Service abstraction on top of the
// Qdrant vector database.
//
// The package has two layers. Client wraps the official Qdrant Go SDK with
// connection lifecycle management and an immediate health check, so a
// misconfigured endpoint fails at construction rather than on first use.
// Adapter builds on Client and realizes the full store contract: collection
// schema management, typed payload filtering, offset pagination, and
// similarity search.
//
// Schema mapping:
//
// Qdrant does not persist a property schema the way schema-first stores do.
// The adapter represents each declared property as a payload index of the
// matching field type, which makes the schema both filterable and readable
// back through the collection info. The parts Qdrant cannot persist (the
// vectorizer spec and per-property vectorization flags) are kept in an
// in-process class registry and re-applied via UpdateCollection after a
// restart.
//
// Vectorization:
//
// Qdrant has no server-side vectorizer, so the adapter embeds record text
// itself through an embedding.Client: on insert it concatenates all text
// properties not marked SkipVectorization and embeds the result with the
// collection's configured model; concept queries are embedded the same way.
// Collections without a vectorizer get a one-dimensional placeholder vector
// and reject ranked queries with store.ErrNoVectorizer.
//
// Distances:
//
// Callers work in cosine distance. Qdrant scores cosine similarity, so the
// adapter converts both ways: a ScoreThreshold of 1-maxDistance on the way
// in, and Distance = 1-score on results.
//
// FX Module Integration:
//
// The package exposes an Fx module for automatic dependency injection:
//
//	app := fx.New(
//		qdrant.FXModule,
//		// other modules...
//	)
//	app.Run()
//
// Configuration:
//
// The client is configured via environment variables or YAML:
//
//	QDRANT_ENDPOINT=localhost
//	QDRANT_PORT=6334
//	QDRANT_API_KEY=your-api-key
//
// Thread Safety:
//
// All exported methods on Adapter are safe for concurrent use by multiple
// goroutines.
package qdrant
