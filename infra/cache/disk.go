package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/op/go-logging"

	"github.com/CrestNiraj12/hntui/domain"
)

var log = logging.MustGetLogger("cache")

// Freshness classifies a disk cache read.
type Freshness int

const (
	Absent Freshness = iota
	Fresh
	Stale
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "absent"
	}
}

// Lookup is the result of DiskCache.Get. Item is set unless State is Absent.
type Lookup struct {
	State Freshness
	Item  domain.Item
	Age   time.Duration
}

// CachedItem is the on-disk record stored at items/{id}.json.
type CachedItem struct {
	FetchedAt int64       `json:"fetched_at"`
	Item      domain.Item `json:"item"`
}

var itemFileRe = regexp.MustCompile(`^[0-9]+\.json$`)

// DiskCache stores one JSON file per item under <dir>/items.
type DiskCache struct {
	itemsDir string
	ttl      time.Duration
	now      func() time.Time
}

// NewDiskCache creates the items directory under dir if needed.
func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	if ttl < time.Second {
		return nil, fmt.Errorf("disk cache ttl must be at least 1s, got %s", ttl)
	}
	itemsDir := filepath.Join(dir, "items")
	if err := os.MkdirAll(itemsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", itemsDir, err)
	}
	return &DiskCache{itemsDir: itemsDir, ttl: ttl, now: time.Now}, nil
}

// TTL returns the freshness window.
func (c *DiskCache) TTL() time.Duration {
	return c.ttl
}

func (c *DiskCache) itemPath(id int64) string {
	return filepath.Join(c.itemsDir, strconv.FormatInt(id, 10)+".json")
}

// Get reads and classifies the cached copy of id. A missing file is Absent,
// not an error. An undecodable file is an ErrCorruptCache error.
func (c *DiskCache) Get(id int64) (Lookup, error) {
	path := c.itemPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Lookup{State: Absent}, nil
		}
		return Lookup{}, fmt.Errorf("read cache %s: %w", path, err)
	}

	cached, err := decodeCachedItem(path, data)
	if err != nil {
		return Lookup{}, err
	}

	age := c.age(cached.FetchedAt)
	if age <= c.ttl {
		return Lookup{State: Fresh, Item: cached.Item, Age: age}, nil
	}
	return Lookup{State: Stale, Item: cached.Item, Age: age}, nil
}

// Put records item as fetched now.
func (c *DiskCache) Put(id int64, item domain.Item) error {
	data, err := json.Marshal(CachedItem{FetchedAt: c.now().Unix(), Item: item})
	if err != nil {
		return fmt.Errorf("encode cache item %d: %w", id, err)
	}
	return atomicWrite(c.itemPath(id), data)
}

// tempGrace spares temp files young enough to belong to a running Put.
const tempGrace = time.Minute

// Cleanup deletes stray files and entries older than maxAge, returning the
// number removed. Any file it cannot read or decode aborts the scan. Files
// that vanish mid-scan were renamed or removed by a writer and are skipped.
func (c *DiskCache) Cleanup(maxAge time.Duration) (int, error) {
	if maxAge < time.Second {
		return 0, fmt.Errorf("cleanup max age must be at least 1s, got %s", maxAge)
	}

	entries, err := os.ReadDir(c.itemsDir)
	if err != nil {
		return 0, fmt.Errorf("read cache dir %s: %w", c.itemsDir, err)
	}

	removed := 0
	for _, e := range entries {
		path := filepath.Join(c.itemsDir, e.Name())
		if !e.Type().IsRegular() {
			return removed, fmt.Errorf("unexpected non-file in cache dir: %s", path)
		}

		if !itemFileRe.MatchString(e.Name()) {
			if strings.Contains(e.Name(), ".json.tmp.") {
				info, err := e.Info()
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if err != nil {
					return removed, fmt.Errorf("stat cache file %s: %w", path, err)
				}
				if c.now().Sub(info.ModTime()) < tempGrace {
					continue
				}
			}
			gone, err := removeFile(path)
			if err != nil {
				return removed, fmt.Errorf("remove stray cache file %s: %w", path, err)
			}
			if gone {
				removed++
			}
			continue
		}

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("read cache %s: %w", path, err)
		}
		cached, err := decodeCachedItem(path, data)
		if err != nil {
			return removed, err
		}
		if c.age(cached.FetchedAt) > maxAge {
			gone, err := removeFile(path)
			if err != nil {
				return removed, fmt.Errorf("remove expired cache %s: %w", path, err)
			}
			if gone {
				removed++
			}
		}
	}

	log.Infof("cache cleanup: %d of %d entries removed from %s", removed, len(entries), c.itemsDir)
	return removed, nil
}

// removeFile reports whether it removed path. A file already gone is not
// an error.
func removeFile(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (c *DiskCache) age(fetchedAt int64) time.Duration {
	secs := c.now().Unix() - fetchedAt
	if secs < 0 {
		secs = 0
	}
	return time.Duration(secs) * time.Second
}

func decodeCachedItem(path string, data []byte) (CachedItem, error) {
	var cached CachedItem
	if err := json.Unmarshal(data, &cached); err != nil {
		return CachedItem{}, fmt.Errorf("%w: decode %s: %v", domain.ErrCorruptCache, path, err)
	}
	return cached, nil
}
