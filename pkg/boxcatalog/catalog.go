// Package boxcatalog is the reference BoxCollection implementation: a
// JSON-backed index of unpacked boxes, persisted under the data directory.
package boxcatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cperrin88/boxkeep/pkg/boxadd"
	"github.com/cperrin88/boxkeep/pkg/boxarchive"
)

// FormatVersion is the catalog file's schema version.
const FormatVersion = "1"

// entry is the on-disk record for one unpacked box.
type entry struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Provider     string    `json:"provider"`
	Architecture string    `json:"architecture"`
	MetadataURL  string    `json:"metadata_url,omitempty"`
	Path         string    `json:"path"`
	AddedAt      time.Time `json:"added_at"`
	Size         int64     `json:"size"`
}

func (e entry) toBox() *boxadd.Box {
	return &boxadd.Box{
		Name:         e.Name,
		Version:      e.Version,
		Provider:     e.Provider,
		Architecture: e.Architecture,
		MetadataURL:  e.MetadataURL,
		Path:         e.Path,
		AddedAt:      e.AddedAt,
		Size:         e.Size,
	}
}

type document struct {
	FormatVersion string    `json:"format_version"`
	LastUpdate    time.Time `json:"last_update"`
	Boxes         []entry   `json:"boxes"`
}

// Catalog is a RWMutex-guarded, JSON-backed BoxCollection. Every mutation
// is saved to disk with a temp-file-then-rename so a crash mid-write never
// corrupts the index.
type Catalog struct {
	indexPath string
	rootDir   string
	archives  *boxarchive.Manager

	mu  sync.RWMutex
	doc document
}

// Open loads (or initializes) a Catalog rooted at rootDir, with its index
// at <rootDir>/index.json.
func Open(rootDir string) (*Catalog, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory %s: %w", rootDir, err)
	}

	c := &Catalog{
		indexPath: filepath.Join(rootDir, "index.json"),
		rootDir:   rootDir,
		archives:  boxarchive.NewManager(),
		doc:       document{FormatVersion: FormatVersion},
	}

	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) load() error {
	data, err := os.ReadFile(c.indexPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading catalog index %s: %w", c.indexPath, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing catalog index %s: %w", c.indexPath, err)
	}
	c.doc = doc
	return nil
}

// save writes the index atomically: temp file in the same directory,
// fsync, then rename over the target.
func (c *Catalog) save() (err error) {
	data, err := json.MarshalIndent(c.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling catalog index: %w", err)
	}

	tmp, err := os.CreateTemp(c.rootDir, "index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp index file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp index file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp index file: %w", err)
	}

	if err = os.Rename(tmpPath, c.indexPath); err != nil {
		return fmt.Errorf("renaming temp index file into place: %w", err)
	}
	return nil
}

// Find implements boxadd.BoxCollection. An empty version or architecture
// matches any value; a non-empty providers list restricts the match to
// those provider names.
func (c *Catalog) Find(name string, providers []string, version, architecture string) (*boxadd.Box, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	want := map[string]struct{}{}
	for _, p := range providers {
		want[p] = struct{}{}
	}

	for _, e := range c.doc.Boxes {
		if e.Name != name {
			continue
		}
		if version != "" && e.Version != version {
			continue
		}
		if architecture != "" && e.Architecture != architecture {
			continue
		}
		if len(want) > 0 {
			if _, ok := want[e.Provider]; !ok {
				continue
			}
		}
		return e.toBox(), nil
	}
	return nil, nil
}

// Add implements boxadd.BoxCollection: it unpacks the archive at path into
// <rootDir>/<name>/<version>/<provider>/ and records the result in the
// index.
func (c *Catalog) Add(path, name, version string, opts boxadd.AddOptions) (*boxadd.Box, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	provider := ""
	if len(opts.Providers) > 0 {
		provider = opts.Providers[0]
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	destDir := filepath.Join(c.rootDir, sanitizeSegment(name), sanitizeSegment(version), sanitizeSegment(provider))
	if err := os.RemoveAll(destDir); err != nil {
		return nil, fmt.Errorf("clearing existing box directory %s: %w", destDir, err)
	}

	if err := c.archives.ExtractAll(context.Background(), path, destDir); err != nil {
		return nil, fmt.Errorf("unpacking box archive: %w", err)
	}

	e := entry{
		Name:         name,
		Version:      version,
		Provider:     provider,
		Architecture: opts.Architecture,
		MetadataURL:  opts.MetadataURL,
		Path:         destDir,
		AddedAt:      time.Now(),
		Size:         info.Size(),
	}

	c.removeLocked(name, version, provider)
	c.doc.Boxes = append(c.doc.Boxes, e)
	c.doc.LastUpdate = time.Now()

	if err := c.save(); err != nil {
		return nil, err
	}

	return e.toBox(), nil
}

func (c *Catalog) removeLocked(name, version, provider string) {
	out := c.doc.Boxes[:0]
	for _, e := range c.doc.Boxes {
		if e.Name == name && e.Version == version && e.Provider == provider {
			continue
		}
		out = append(out, e)
	}
	c.doc.Boxes = out
}

// List returns every box currently recorded in the catalog.
func (c *Catalog) List() []*boxadd.Box {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*boxadd.Box, 0, len(c.doc.Boxes))
	for _, e := range c.doc.Boxes {
		out = append(out, e.toBox())
	}
	return out
}

func sanitizeSegment(s string) string {
	if s == "" {
		return "_"
	}
	r := []rune(s)
	for i, c := range r {
		if c == filepath.Separator || c == '/' || c == '\\' {
			r[i] = '_'
		}
	}
	return string(r)
}
