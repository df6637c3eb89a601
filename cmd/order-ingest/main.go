// Command order-ingest imports archived order documents into PostgreSQL.
// Archives are gzip-compressed JSON-lines files, one order document per line,
// typically daily exports whose boundaries overlap. A bloom filter over the
// ids already present keeps the common case (known order) to a memory check;
// positives are confirmed against the store before skipping.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/courier-market/internal/domain/order"
	"github.com/xenking/courier-market/internal/repository"
)

const (
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
		workers     int
		bloomCap    uint
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing order archive .gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "number of archive segments processed concurrently")
	flag.UintVar(&bloomCap, "bloom-capacity", 10_000_000, "expected total order count for the dedup filter")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, workers, bloomCap); err != nil {
		slog.Error("order ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, workers int, bloomCap uint) error {
	segments, err := filepath.Glob(filepath.Join(dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list archive segments")
	}
	if len(segments) == 0 {
		return errors.Errorf("no .gz archive segments in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := repository.NewOrderRepository(pool)

	dedup, err := newDedupFilter(ctx, pool, bloomCap)
	if err != nil {
		return errors.Wrap(err, "build dedup filter")
	}

	slog.Info("ingesting segments",
		slog.Int("segments", len(segments)),
		slog.Int("workers", workers),
	)

	ing := &ingester{repo: repo, dedup: dedup}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, seg := range segments {
		g.Go(ing.ingestSegment(ctx, seg))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ingest summary",
		slog.Int64("inserted", ing.inserted.Load()),
		slog.Int64("skipped", ing.skipped.Load()),
		slog.Int64("invalid", ing.invalid.Load()),
	)
	return nil
}

// dedupFilter tracks which order ids are already stored. The bloom filter
// answers "definitely new" without a database round trip; positives may be
// false and must be confirmed against the store.
// idScanner is the slice of pgxpool.Pool needed to prime the filter.
type idScanner interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type dedupFilter struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

func newDedupFilter(ctx context.Context, pool idScanner, capacity uint) (*dedupFilter, error) {
	d := &dedupFilter{filter: bloom.NewWithEstimates(capacity, bloomFPR)}

	rows, err := pool.Query(ctx, `SELECT id FROM orders`)
	if err != nil {
		return nil, errors.Wrap(err, "query existing ids")
	}
	defer rows.Close()

	var count int
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan id")
		}
		d.filter.AddString(id)
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate ids")
	}

	slog.Info("dedup filter primed", slog.Int("existing_orders", count))
	return d, nil
}

// maybeSeen reports whether id may already be stored. False means the id is
// definitely new; the id is recorded either way so later segments see it.
func (d *dedupFilter) maybeSeen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := d.filter.TestString(id)
	if !seen {
		d.filter.AddString(id)
	}
	return seen
}

type ingester struct {
	repo  *repository.OrderRepository
	dedup *dedupFilter

	inserted atomic.Int64
	skipped  atomic.Int64
	invalid  atomic.Int64
}

func (ing *ingester) ingestSegment(ctx context.Context, path string) func() error {
	return func() error {
		var count uint64

		err := streamGzFile(ctx, path, func(line []byte) error {
			count++
			if count%progressEvery == 0 {
				slog.Info("segment progress",
					slog.String("segment", filepath.Base(path)),
					slog.Uint64("records", count),
				)
			}

			var o order.Order
			if err := json.Unmarshal(line, &o); err != nil || o.ID == "" || !o.Status.Valid() {
				ing.invalid.Add(1)
				return nil
			}
			if o.Version == 0 {
				// Archives exported before documents carried a write
				// counter; start them at the insert value.
				o.Version = 1
			}

			if ing.dedup.maybeSeen(o.ID) {
				if _, err := ing.repo.Get(ctx, o.ID); err == nil {
					ing.skipped.Add(1)
					return nil
				} else if !errors.Is(err, order.ErrNotFound) {
					return errors.Wrapf(err, "confirm order %s", o.ID)
				}
			}

			switch err := ing.repo.Put(ctx, &o, order.StatusNone); {
			case err == nil:
				ing.inserted.Add(1)
			case errors.Is(err, order.ErrConflict):
				// Another segment inserted it between the check and the write.
				ing.skipped.Add(1)
			default:
				return errors.Wrapf(err, "insert order %s", o.ID)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "ingest segment %s", filepath.Base(path))
		}

		slog.Info("segment complete",
			slog.String("segment", filepath.Base(path)),
			slog.Uint64("records", count),
		)
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<22)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
