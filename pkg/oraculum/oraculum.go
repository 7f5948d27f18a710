package oraculum

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/oraculum-ai/oraculum-go/pkg/metrics"
	"github.com/oraculum-ai/oraculum-go/pkg/store"
	"github.com/oraculum-ai/oraculum-go/pkg/tracer"
)

// Oraculum is the entry point to the fact store: it validates and upgrades
// the schema on Connect, then serves point operations through the generic
// repositories and relevance queries through the query composer.
type Oraculum struct {
	conf Configuration
	svc  store.Service
	log  Logger

	metrics *metrics.Metrics
	tracer  *tracer.Tracer

	versions *VersionManager
	backup   *BackupEngine
	facts    *Repository[Fact]
	generics *Repository[GenericObject]

	connected atomic.Bool
}

// New wires the component graph. metrics and tr may be nil; the store is not
// contacted until Init or Connect.
func New(conf Configuration, svc store.Service, log Logger, m *metrics.Metrics, tr *tracer.Tracer) (*Oraculum, error) {
	factCol, err := NewCollection(svc, factDescriptor, log)
	if err != nil {
		return nil, err
	}
	genericCol, err := NewCollection(svc, genericObjectDescriptor, log)
	if err != nil {
		return nil, err
	}

	backup := NewBackupEngine(svc, log, m)
	return &Oraculum{
		conf:     conf,
		svc:      svc,
		log:      log,
		metrics:  m,
		tracer:   tr,
		versions: NewVersionManager(svc, backup, log, m),
		backup:   backup,
		facts:    NewRepository(factCol, log),
		generics: NewRepository(genericCol, log),
	}, nil
}

// Facts exposes the fact repository for callers that need the raw
// repository surface. Most callers use the named operations below.
func (o *Oraculum) Facts() *Repository[Fact] { return o.facts }

// IsConnected reports whether Connect has completed.
func (o *Oraculum) IsConnected() bool { return o.connected.Load() }

// IsInitialized reports whether the store has been set up for this
// application.
func (o *Oraculum) IsInitialized(ctx context.Context) (bool, error) {
	return o.versions.IsInitialized(ctx)
}

// Init performs first-time setup of the store, wiping any previous state.
func (o *Oraculum) Init(ctx context.Context) error {
	if err := o.versions.Init(ctx); err != nil {
		return err
	}
	o.facts.Collection().forget()
	o.connected.Store(true)
	return nil
}

// Connect validates the store's schema version, migrating if it is behind,
// and binds the fact collection. It must be called before any fact
// operation.
func (o *Oraculum) Connect(ctx context.Context) error {
	if o.conf.UserName != "" {
		o.log.Debug("default user name set", nil, map[string]interface{}{"user": o.conf.UserName})
	}

	initialized, err := o.versions.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if !initialized {
		return ErrNotInitialized
	}

	if _, err := o.versions.Load(ctx); err != nil {
		return err
	}
	if o.versions.NeedsUpgrade() {
		cfg := o.versions.Config()
		o.log.Warn("store schema version is behind", nil, map[string]interface{}{
			"store":    fmt.Sprintf("%d.%d", cfg.SchemaMajorVersion, cfg.SchemaMinorVersion),
			"required": currentVersion.String(),
		})
		if err := o.Upgrade(ctx); err != nil {
			return err
		}
	}

	if err := o.facts.Collection().Ensure(ctx); err != nil {
		return err
	}
	o.connected.Store(true)
	return nil
}

// Upgrade migrates the fact collection to the current schema version. It is
// invoked automatically by Connect on version skew but may also be called
// explicitly.
func (o *Oraculum) Upgrade(ctx context.Context) error {
	ctx, span := o.startSpan(ctx, "oraculum.Upgrade")
	defer span.End()

	if err := o.versions.Upgrade(ctx); err != nil {
		o.recordError(span, err)
		return err
	}
	o.facts.Collection().forget()
	return nil
}

func (o *Oraculum) ensureConnected() error {
	if !o.connected.Load() {
		return ErrNotConnected
	}
	return nil
}

// ── Fact Operations ──────────────────────────────────────────────────────────

// TotalFacts returns the number of stored facts.
func (o *Oraculum) TotalFacts(ctx context.Context) (int64, error) {
	if err := o.ensureConnected(); err != nil {
		return 0, err
	}
	return o.observe("total-facts", func() (int64, error) {
		return o.facts.Count(ctx)
	})
}

// TotalFactsByCategory returns the number of facts in a category.
func (o *Oraculum) TotalFactsByCategory(ctx context.Context, category string) (int64, error) {
	if err := o.ensureConnected(); err != nil {
		return 0, err
	}
	return o.observe("total-facts-by-category", func() (int64, error) {
		return o.facts.CountByProperty(ctx, "category", category)
	})
}

// AddFact stores a fact and returns the assigned id. When a default user
// name is configured and the fact carries no edit principals, the user is
// stamped as owner.
func (o *Oraculum) AddFact(ctx context.Context, fact *Fact) (string, error) {
	if err := o.ensureConnected(); err != nil {
		return "", err
	}
	o.stampEditPrincipals(fact)

	id, err := o.facts.Add(ctx, fact)
	o.countOp("add", FactClassName, err)
	if err != nil {
		return "", err
	}
	o.log.Info("fact added", nil, map[string]interface{}{"id": id})
	return id, nil
}

// AddFacts stores a batch of facts and returns how many the store
// acknowledged.
func (o *Oraculum) AddFacts(ctx context.Context, facts []*Fact) (int, error) {
	if err := o.ensureConnected(); err != nil {
		return 0, err
	}
	for _, fact := range facts {
		o.stampEditPrincipals(fact)
	}

	n, err := o.facts.AddAll(ctx, facts)
	o.countOp("add-batch", FactClassName, err)
	if err != nil {
		return 0, err
	}
	o.log.Info("facts added", nil, map[string]interface{}{"count": n})
	return n, nil
}

// GetFact fetches a fact by id; absent facts yield (nil, nil).
func (o *Oraculum) GetFact(ctx context.Context, id string) (*Fact, error) {
	if err := o.ensureConnected(); err != nil {
		return nil, err
	}
	fact, err := o.facts.Get(ctx, id)
	o.countOp("get", FactClassName, err)
	return fact, err
}

// UpdateFact overwrites a stored fact; absent ids fail with ErrNotFound.
func (o *Oraculum) UpdateFact(ctx context.Context, fact *Fact) error {
	if err := o.ensureConnected(); err != nil {
		return err
	}
	err := o.facts.Update(ctx, fact)
	o.countOp("update", FactClassName, err)
	return err
}

// DeleteFact removes a fact; deleting an absent id returns false.
func (o *Oraculum) DeleteFact(ctx context.Context, id string) (bool, error) {
	if err := o.ensureConnected(); err != nil {
		return false, err
	}
	deleted, err := o.facts.Delete(ctx, id)
	o.countOp("delete", FactClassName, err)
	if deleted {
		o.log.Info("fact deleted", nil, map[string]interface{}{"id": id})
	}
	return deleted, err
}

// ListFacts returns a page of facts.
func (o *Oraculum) ListFacts(ctx context.Context, limit, offset int64, sort string, order store.SortOrder) ([]*Fact, error) {
	if err := o.ensureConnected(); err != nil {
		return nil, err
	}
	facts, err := o.facts.List(ctx, limit, offset, sort, order)
	o.countOp("list", FactClassName, err)
	return facts, err
}

// stampEditPrincipals marks ownership on facts added under a configured
// default user: unowned facts get the user as owner, owned ones get the
// user appended.
func (o *Oraculum) stampEditPrincipals(fact *Fact) {
	if o.conf.UserName == "" {
		return
	}
	if fact.EditPrincipals == nil {
		fact.EditPrincipals = []string{"O:" + o.conf.UserName}
	} else {
		fact.EditPrincipals = append(fact.EditPrincipals, o.conf.UserName)
	}
}

// ── Backup / Restore ─────────────────────────────────────────────────────────

// BackupFacts exports every fact to the file at path and returns the row
// count.
func (o *Oraculum) BackupFacts(ctx context.Context, path string, progress ProgressFunc) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating backup file: %w", err)
	}
	defer f.Close()
	return o.ExportFacts(ctx, f, progress)
}

// ExportFacts streams every fact to w.
func (o *Oraculum) ExportFacts(ctx context.Context, w io.Writer, progress ProgressFunc) (int64, error) {
	return o.backup.Export(ctx, FactClassName, w, progress)
}

// RestoreFacts replaces the fact collection with the contents of the backup
// file at path and returns the number of imported rows.
func (o *Oraculum) RestoreFacts(ctx context.Context, path string, progress ProgressFunc) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening backup file: %w", err)
	}
	defer f.Close()
	return o.ImportFacts(ctx, f, progress)
}

// ImportFacts wipes the fact collection and re-imports it from a backup
// stream.
func (o *Oraculum) ImportFacts(ctx context.Context, r io.Reader, progress ProgressFunc) (int64, error) {
	if err := o.svc.DeleteCollection(ctx, FactClassName); err != nil {
		return 0, storeErr("delete", FactClassName, err)
	}
	if err := o.svc.CreateCollection(ctx, factClass); err != nil {
		return 0, storeErr("create", FactClassName, err)
	}
	o.facts.Collection().forget()

	return o.backup.Restore(ctx, FactClassName, r, RestoreOptions{Progress: progress})
}

// ── Generic Objects ──────────────────────────────────────────────────────────

// AddGenericObject stores a generic object and returns the assigned id.
func (o *Oraculum) AddGenericObject(ctx context.Context, obj *GenericObject) (string, error) {
	if err := o.ensureConnected(); err != nil {
		return "", err
	}
	id, err := o.generics.Add(ctx, obj)
	o.countOp("add", GenericObjectClassName, err)
	return id, err
}

// GetGenericObject fetches a generic object by id; absence yields (nil, nil).
func (o *Oraculum) GetGenericObject(ctx context.Context, id string) (*GenericObject, error) {
	if err := o.ensureConnected(); err != nil {
		return nil, err
	}
	obj, err := o.generics.Get(ctx, id)
	o.countOp("get", GenericObjectClassName, err)
	return obj, err
}

// ListGenericObjects returns a page of generic objects.
func (o *Oraculum) ListGenericObjects(ctx context.Context, limit, offset int64, sort string, order store.SortOrder) ([]*GenericObject, error) {
	if err := o.ensureConnected(); err != nil {
		return nil, err
	}
	objs, err := o.generics.List(ctx, limit, offset, sort, order)
	o.countOp("list", GenericObjectClassName, err)
	return objs, err
}

// UpdateGenericObject overwrites a stored generic object.
func (o *Oraculum) UpdateGenericObject(ctx context.Context, obj *GenericObject) error {
	if err := o.ensureConnected(); err != nil {
		return err
	}
	err := o.generics.Update(ctx, obj)
	o.countOp("update", GenericObjectClassName, err)
	return err
}

// DeleteGenericObject removes a generic object by id.
func (o *Oraculum) DeleteGenericObject(ctx context.Context, id string) (bool, error) {
	if err := o.ensureConnected(); err != nil {
		return false, err
	}
	deleted, err := o.generics.Delete(ctx, id)
	o.countOp("delete", GenericObjectClassName, err)
	return deleted, err
}

// ── Instrumentation Helpers ──────────────────────────────────────────────────

func (o *Oraculum) countOp(op, collection string, err error) {
	if o.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	o.metrics.StoreOps.WithLabelValues(op, collection, status).Inc()
}

func (o *Oraculum) observe(op string, fn func() (int64, error)) (int64, error) {
	n, err := fn()
	o.countOp(op, FactClassName, err)
	return n, err
}

func (o *Oraculum) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, noop.Span{}
	}
	return o.tracer.StartSpan(ctx, name)
}

func (o *Oraculum) recordError(span trace.Span, err error) {
	if o.tracer != nil {
		o.tracer.RecordErrorOnSpan(span, err)
	}
}

func (o *Oraculum) observeQuery(ranked bool, start time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.QueryDuration.WithLabelValues(fmt.Sprintf("%t", ranked)).Observe(time.Since(start).Seconds())
}
