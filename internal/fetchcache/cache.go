// Package fetchcache implements the URL-keyed, disk-backed schema cache
// (spec.md component C2), grounded on util.Store from original_source: a
// storage directory of numbered documents plus a sidecar CSV index mapping
// local file name to source URL.
package fetchcache

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

// Cache is a process-wide, lazily-populated URL -> document store. All
// mutation (index append + document write) happens under one mutex, per
// spec.md §5: "throughput is dominated by network I/O", so a single global
// lock is sufficient.
type Cache struct {
	mu      sync.Mutex
	dir     string
	index   string
	counter int
	metrics *Metrics

	// rows caches the parsed index so repeated lookups don't re-read the
	// CSV file from disk on every Get.
	loaded bool
	rows   []indexRow
}

type indexRow struct {
	localName string
	url       string
}

// New returns a Cache rooted at dir with sidecar index file indexPath.
// Directories/files are created lazily on first write, matching
// util.Store's own lazy-mkdir behavior.
func New(dir, indexPath string) *Cache {
	return &Cache{dir: dir, index: indexPath}
}

// WithMetrics attaches Prometheus counters to the cache; nil disables
// metrics (the zero value already behaves this way).
func (c *Cache) WithMetrics(m *Metrics) *Cache {
	c.metrics = m
	return c
}

// Get looks up url in the sidecar index. It returns joerrors.NotCached on a
// miss, matching Store.getSchema throwing StoreException.
func (c *Cache) Get(url string) (*jsonvalue.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	for _, row := range c.rows {
		if row.url == url {
			doc, err := c.readDocument(row.localName)
			if err != nil {
				return nil, joerrors.Wrap(joerrors.NotCached, url, err)
			}
			c.recordHit()
			return doc, nil
		}
	}
	c.recordMiss()
	return nil, joerrors.New(joerrors.NotCached, url)
}

// Put stores doc under a freshly numbered file and appends an index row,
// unless url uses the "file" scheme (local files are never duplicated into
// the cache directory, matching Store.storeSchema).
func (c *Cache) Put(url string, doc *jsonvalue.Value) error {
	if strings.HasPrefix(url, "file:") {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(); err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", c.dir, err)
	}

	localName := fmt.Sprintf("js_%d.json", c.counter)
	c.counter++

	path := filepath.Join(c.dir, localName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cache file %s: %w", path, err)
	}
	if err := jsonvalue.Encode(f, doc, "  "); err != nil {
		f.Close()
		return fmt.Errorf("write cache file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close cache file %s: %w", path, err)
	}

	if err := c.appendIndexRow(localName, url); err != nil {
		return err
	}
	c.rows = append(c.rows, indexRow{localName: localName, url: url})
	c.recordStore()
	return nil
}

func (c *Cache) ensureLoaded() error {
	if c.loaded {
		return nil
	}
	c.loaded = true

	f, err := os.Open(c.index)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open cache index %s: %w", c.index, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read cache index %s: %w", c.index, err)
	}

	rows := make([]indexRow, 0, len(records))
	maxCounter := -1
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		rows = append(rows, indexRow{localName: rec[0], url: rec[1]})
		if n, ok := parseJSCounter(rec[0]); ok && n > maxCounter {
			maxCounter = n
		}
	}
	c.rows = rows
	c.counter = maxCounter + 1
	return nil
}

func parseJSCounter(localName string) (int, bool) {
	name := strings.TrimSuffix(strings.TrimPrefix(localName, "js_"), ".json")
	if name == localName {
		return 0, false
	}
	n := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func (c *Cache) appendIndexRow(localName, url string) error {
	f, err := os.OpenFile(c.index, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open cache index %s: %w", c.index, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{localName, url}); err != nil {
		return fmt.Errorf("write cache index row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (c *Cache) readDocument(localName string) (*jsonvalue.Value, error) {
	path := filepath.Join(c.dir, localName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache file %s: %w", path, err)
	}
	return jsonvalue.Unmarshal(bytes.TrimSpace(data))
}

func (c *Cache) recordHit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *Cache) recordMiss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}

func (c *Cache) recordStore() {
	if c.metrics != nil {
		c.metrics.CacheStores.Inc()
	}
}

// Close is a no-op: the cache is deliberately never closed (spec.md §5:
// "lifecycle: lazy-init on first store, persisted to disk, not closed").
// It exists so callers holding a Cache behind an io.Closer-like interface
// don't need a type switch.
func (c *Cache) Close() error { return nil }

var _ io.Closer = (*Cache)(nil)
