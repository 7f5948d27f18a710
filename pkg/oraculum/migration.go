package oraculum

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oraculum-ai/oraculum-go/pkg/metrics"
	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// schemaVersion identifies a fact field-set generation.
type schemaVersion struct {
	Major, Minor int
}

func (v schemaVersion) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

var currentVersion = schemaVersion{SchemaMajorVersion, SchemaMinorVersion}

// fieldsV10 is the fact field set of schema generation 1.0. Generation 1.1
// added location, validity window, edit principals and factAdded; the
// current generation is field-identical to 1.1 but vectorizes content.
var fieldsV10 = []string{
	"factType", "category", "tags", "title",
	"content", "citation", "reference", "expiration",
}

// migrations maps a source schema version onto the transform lifting one
// record of that generation to the current schema. Each entry is a single
// direct mapping; there is no multi-hop chain through intermediate versions.
// Historical generations exist only as these transient transform inputs,
// never as entity types of their own.
var migrations = map[schemaVersion]func(map[string]any) map[string]any{
	{1, 0}: transformFrom10,
	{1, 1}: transformFrom11,
}

// transformFrom10 keeps the fields common to 1.0 and current; every field
// added after 1.0 remains unset. A 1.0 store never carried location or
// validity data, so there is nothing to backfill.
func transformFrom10(props map[string]any) map[string]any {
	out := make(map[string]any, len(fieldsV10))
	for _, field := range fieldsV10 {
		if v, ok := props[field]; ok {
			out[field] = v
		}
	}
	return out
}

// transformFrom11 carries every 1.1 field unchanged; the current generation
// differs only in vectorization, which the new collection applies on import.
func transformFrom11(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// VersionManager owns the persisted configuration record and orchestrates
// schema migrations: export the old collection through the backup engine,
// replace the collection, lift each record with the transform for the source
// version, re-import, and only then bump the persisted version.
//
// Migration is not safe for concurrent execution against the same store;
// callers must ensure at most one runs at a time.
type VersionManager struct {
	svc     store.Service
	backup  *BackupEngine
	log     Logger
	metrics *metrics.Metrics

	// config is the loaded configuration record. Explicit instance state:
	// loaded on Connect, mutated exactly once per successful migration.
	config *Config
}

// NewVersionManager builds a manager. metrics may be nil.
func NewVersionManager(svc store.Service, backup *BackupEngine, log Logger, m *metrics.Metrics) *VersionManager {
	return &VersionManager{svc: svc, backup: backup, log: log, metrics: m}
}

// Config returns the loaded configuration record, or nil before Load.
func (vm *VersionManager) Config() *Config { return vm.config }

// IsInitialized reports whether the store carries both the configuration
// and the fact collection.
func (vm *VersionManager) IsInitialized(ctx context.Context) (bool, error) {
	names, err := vm.svc.ListCollections(ctx)
	if err != nil {
		return false, storeErr("list-collections", "", err)
	}
	var haveFacts, haveConfig bool
	for _, n := range names {
		switch n {
		case FactClassName:
			haveFacts = true
		case ConfigClassName:
			haveConfig = true
		}
	}
	return haveFacts && haveConfig, nil
}

// Load reads the configuration record into instance state.
func (vm *VersionManager) Load(ctx context.Context) (*Config, error) {
	obj, err := vm.svc.GetObject(ctx, ConfigClassName, ConfigID)
	if errors.Is(err, store.ErrObjectNotFound) || errors.Is(err, store.ErrCollectionNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, storeErr("get", ConfigClassName, err)
	}

	cfg := &Config{}
	configDescriptor.Decode(obj.Properties, cfg)
	cfg.ID = obj.ID
	vm.config = cfg
	return cfg, nil
}

// NeedsUpgrade reports whether the loaded configuration claims a schema
// version older than the compiled-in one.
func (vm *VersionManager) NeedsUpgrade() bool {
	return vm.config != nil &&
		(vm.config.SchemaMajorVersion != SchemaMajorVersion ||
			vm.config.SchemaMinorVersion != SchemaMinorVersion)
}

// Upgrade migrates the fact collection to the current schema version.
// Already-current stores are a no-op.
//
// The persisted configuration is updated only after the new collection is
// fully populated. A crash mid-migration therefore leaves the config
// claiming the old version with the old collection already gone, which the
// next Upgrade detects as ErrInconsistentSchema.
func (vm *VersionManager) Upgrade(ctx context.Context) error {
	if vm.config == nil {
		if _, err := vm.Load(ctx); err != nil {
			return err
		}
	}

	from := schemaVersion{vm.config.SchemaMajorVersion, vm.config.SchemaMinorVersion}
	if from == currentVersion {
		return nil
	}

	transform, ok := migrations[from]
	if !ok {
		return fmt.Errorf("no migration path from schema version %s", from)
	}

	if _, err := vm.svc.GetCollection(ctx, FactClassName); err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return fmt.Errorf("config claims schema %s but collection %s is missing: %w",
				from, FactClassName, ErrInconsistentSchema)
		}
		return storeErr("get-schema", FactClassName, err)
	}

	vm.log.Warn("store schema is outdated, migrating", nil, map[string]interface{}{
		"from": from.String(),
		"to":   currentVersion.String(),
	})

	tmp, err := os.CreateTemp("", "oraculum-migration-*.bak")
	if err != nil {
		return fmt.Errorf("creating migration backup file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	exported, err := vm.backup.Export(ctx, FactClassName, tmp, vm.progressFunc("export"))
	if err != nil {
		return fmt.Errorf("exporting %s for migration: %w", FactClassName, err)
	}

	if err := vm.svc.DeleteCollection(ctx, FactClassName); err != nil {
		return storeErr("delete", FactClassName, err)
	}
	if err := vm.svc.CreateCollection(ctx, factClass); err != nil {
		return storeErr("create", FactClassName, err)
	}

	if _, err := tmp.Seek(0, 0); err != nil {
		return fmt.Errorf("rewinding migration backup file: %w", err)
	}

	imported, err := vm.backup.Restore(ctx, FactClassName, tmp, RestoreOptions{
		Transform: transform,
		Progress:  vm.progressFunc("import"),
	})
	if err != nil {
		return fmt.Errorf("importing migrated facts: %w", err)
	}
	if imported != exported {
		vm.log.Warn("migration row count mismatch", nil, map[string]interface{}{
			"exported": exported,
			"imported": imported,
		})
	}

	// The new collection is populated; only now may the persisted version
	// change.
	vm.config.SchemaMajorVersion = SchemaMajorVersion
	vm.config.SchemaMinorVersion = SchemaMinorVersion
	if err := vm.saveConfig(ctx); err != nil {
		return err
	}

	vm.log.Info("schema migration complete", nil, map[string]interface{}{
		"from": from.String(),
		"to":   currentVersion.String(),
		"rows": imported,
	})
	return nil
}

// Init performs first-time setup: any pre-existing configuration and fact
// collections are deleted, both are recreated fresh, and a new configuration
// record is written stamped with the current versions. The expiration field
// is indexed for structured filtering as part of the fact class.
func (vm *VersionManager) Init(ctx context.Context) error {
	vm.log.Info("initializing store schema", nil)

	names, err := vm.svc.ListCollections(ctx)
	if err != nil {
		return storeErr("list-collections", "", err)
	}
	for _, n := range names {
		if n != FactClassName && n != ConfigClassName {
			continue
		}
		vm.log.Debug("deleting pre-existing collection", nil, map[string]interface{}{"collection": n})
		if err := vm.svc.DeleteCollection(ctx, n); err != nil {
			return storeErr("delete", n, err)
		}
	}

	if err := vm.svc.CreateCollection(ctx, configClass); err != nil {
		return storeErr("create", ConfigClassName, err)
	}
	if err := vm.svc.CreateCollection(ctx, factClass); err != nil {
		return storeErr("create", FactClassName, err)
	}

	vm.config = &Config{
		ID:                 ConfigID,
		MajorVersion:       MajorVersion,
		MinorVersion:       MinorVersion,
		SchemaMajorVersion: SchemaMajorVersion,
		SchemaMinorVersion: SchemaMinorVersion,
		CreationDate:       time.Now().UTC(),
	}
	return vm.saveConfig(ctx)
}

func (vm *VersionManager) saveConfig(ctx context.Context) error {
	obj := store.Object{
		ID:         ConfigID,
		Properties: configDescriptor.Encode(vm.config),
	}
	return storeErr("save", ConfigClassName, vm.svc.SaveObject(ctx, ConfigClassName, obj))
}

func (vm *VersionManager) progressFunc(direction string) ProgressFunc {
	return func(processed, total int64) {
		if vm.metrics != nil {
			vm.metrics.MigrationBatches.Inc()
		}
		vm.log.Debug("migration progress", nil, map[string]interface{}{
			"direction": direction,
			"processed": processed,
			"total":     total,
		})
	}
}
