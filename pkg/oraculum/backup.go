package oraculum

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/oraculum-ai/oraculum-go/pkg/metrics"
	"github.com/oraculum-ai/oraculum-go/pkg/store"
)

// backupBatchSize is the number of rows exported or imported per batch.
// Batches are sequential to bound memory during large migrations.
const backupBatchSize = 100

// ProgressFunc is invoked after each processed batch with the number of rows
// handled so far and the expected total.
type ProgressFunc func(processed, total int64)

// RestoreOptions tunes a restore run.
type RestoreOptions struct {
	// Progress is invoked after each imported batch.
	Progress ProgressFunc

	// Transform, when set, rewrites each record's property map before
	// submission. Migration transforms plug in here.
	Transform func(map[string]any) map[string]any
}

// BackupEngine streams a collection's records to and from a length-prefixed
// batch format:
//
//	count\n
//	byteLength\n<byteLength bytes of an encoded batch>\n
//	...
//
// The byte-length framing lets the restore side read variable-length batches
// unambiguously even when record content embeds newlines. The format is
// private to this package and only guaranteed to round-trip within one
// release.
type BackupEngine struct {
	svc     store.Service
	log     Logger
	metrics *metrics.Metrics
}

// NewBackupEngine builds the engine. metrics may be nil.
func NewBackupEngine(svc store.Service, log Logger, m *metrics.Metrics) *BackupEngine {
	return &BackupEngine{svc: svc, log: log, metrics: m}
}

// Export writes every record of a collection to w and returns the exported
// row count.
func (e *BackupEngine) Export(ctx context.Context, collection string, w io.Writer, progress ProgressFunc) (int64, error) {
	n, err := e.svc.Count(ctx, collection)
	if err != nil {
		return 0, storeErr("count", collection, err)
	}

	out := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(out, "%d\n", n); err != nil {
		return 0, fmt.Errorf("writing backup header: %w", err)
	}

	for offset := int64(0); offset < n; offset += backupBatchSize {
		if err := ctx.Err(); err != nil {
			return offset, err
		}

		batch, err := e.svc.ListObjects(ctx, collection, store.Page{
			Limit:  backupBatchSize,
			Offset: offset,
		})
		if err != nil {
			return offset, storeErr("list", collection, err)
		}

		encoded, err := json.Marshal(batch)
		if err != nil {
			return offset, fmt.Errorf("encoding backup batch at offset %d: %w", offset, err)
		}
		if _, err := fmt.Fprintf(out, "%d\n", len(encoded)); err != nil {
			return offset, fmt.Errorf("writing batch length: %w", err)
		}
		if _, err := out.Write(encoded); err != nil {
			return offset, fmt.Errorf("writing batch: %w", err)
		}
		if err := out.WriteByte('\n'); err != nil {
			return offset, fmt.Errorf("writing batch terminator: %w", err)
		}

		e.countRows("export", len(batch))
		if progress != nil {
			progress(offset, n)
		}
	}

	if err := out.Flush(); err != nil {
		return n, fmt.Errorf("flushing backup stream: %w", err)
	}

	e.log.Info("backup export complete", nil, map[string]interface{}{
		"collection": collection,
		"rows":       n,
	})
	return n, nil
}

// Restore imports a backup stream into a collection and returns the number
// of rows the store acknowledged.
//
// Insertion of a batch may partially succeed. The engine compares the
// submitted ids against the acknowledged ones and resubmits only the
// outstanding rows, repeating until none remain. A final mismatch between
// the stream header and the imported total is logged but not fatal; the
// best-effort total is still returned.
func (e *BackupEngine) Restore(ctx context.Context, collection string, r io.Reader, opts RestoreOptions) (int64, error) {
	in := bufio.NewReader(r)

	header, err := readCountLine(in)
	if err != nil {
		return 0, fmt.Errorf("reading backup header: %w", err)
	}

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		size, err := readCountLine(in)
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("reading batch length: %w", err)
		}

		buf := make([]byte, size)
		if _, err := io.ReadFull(in, buf); err != nil {
			return total, fmt.Errorf("reading batch of %d bytes: %w", size, err)
		}
		// Consume the terminator after the raw batch bytes.
		if _, err := in.ReadString('\n'); err != nil && err != io.EOF {
			return total, fmt.Errorf("reading batch terminator: %w", err)
		}

		var batch []store.Object
		if err := json.Unmarshal(buf, &batch); err != nil {
			return total, fmt.Errorf("decoding batch: %w", err)
		}

		for i := range batch {
			batch[i].Distance = nil
			if opts.Transform != nil {
				batch[i].Properties = opts.Transform(batch[i].Properties)
			}
		}

		added, err := e.addWithReconciliation(ctx, collection, batch)
		total += added
		if err != nil {
			return total, err
		}

		e.countRows("restore", int(added))
		if opts.Progress != nil {
			opts.Progress(total, header)
		}
	}

	if total != header {
		e.log.Warn("restore row count mismatch", nil, map[string]interface{}{
			"collection": collection,
			"expected":   header,
			"imported":   total,
		})
	}
	return total, nil
}

// addWithReconciliation submits a batch and resubmits unacknowledged rows
// until the store has accepted every one.
func (e *BackupEngine) addWithReconciliation(ctx context.Context, collection string, batch []store.Object) (int64, error) {
	var added int64
	outstanding := batch

	for len(outstanding) > 0 {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		ids, err := e.svc.AddObjects(ctx, collection, outstanding)
		if err != nil {
			return added, storeErr("add", collection, err)
		}
		added += int64(len(ids))

		if len(ids) >= len(outstanding) {
			break
		}
		if len(ids) == 0 {
			return added, &StoreError{
				Op:    "add",
				Class: collection,
				Cause: fmt.Errorf("store acknowledged none of %d outstanding rows", len(outstanding)),
			}
		}

		acked := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			acked[id] = struct{}{}
		}
		var remaining []store.Object
		for _, obj := range outstanding {
			if _, ok := acked[obj.ID]; !ok {
				remaining = append(remaining, obj)
			}
		}
		e.log.Warn("resubmitting unacknowledged rows", nil, map[string]interface{}{
			"collection": collection,
			"rows":       len(remaining),
		})
		outstanding = remaining
	}
	return added, nil
}

func (e *BackupEngine) countRows(direction string, n int) {
	if e.metrics != nil {
		e.metrics.BackupRows.WithLabelValues(direction).Add(float64(n))
	}
}

// readCountLine reads one line holding a base-10 integer.
func readCountLine(in *bufio.Reader) (int64, error) {
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, err
	}
	n, perr := strconv.ParseInt(trimLine(line), 10, 64)
	if perr != nil {
		return 0, fmt.Errorf("malformed count line %q: %w", line, perr)
	}
	return n, nil
}

func trimLine(line string) string {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
