package main

import (
	"os"
	"sync"
	"time"
)

// DatasetCache holds the loaded dataset for the life of the process. The
// cache key is source path + file modification time; a changed file or an
// explicit Invalidate forces the next Load to re-read and re-derive. Readers
// share the immutable dataset, so only the (re)load path takes the write
// lock.
type DatasetCache struct {
	path string

	mu         sync.RWMutex
	ds         *Dataset
	modTime    time.Time
	lastResult LoadResult
}

func NewDatasetCache(path string) *DatasetCache {
	return &DatasetCache{path: path}
}

// Load returns the cached dataset when the source file is unchanged,
// otherwise runs a full load. On load failure no dataset is cached and the
// error is returned as-is (callers match ErrSourceNotFound to offer sample
// regeneration).
func (c *DatasetCache) Load() (*Dataset, LoadResult, error) {
	if info, err := os.Stat(c.path); err == nil {
		c.mu.RLock()
		if c.ds != nil && info.ModTime().Equal(c.modTime) {
			ds, result := c.ds, c.lastResult
			c.mu.RUnlock()
			return ds, result, nil
		}
		c.mu.RUnlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another loader may have won the race between the locks.
	if info, err := os.Stat(c.path); err == nil && c.ds != nil && info.ModTime().Equal(c.modTime) {
		return c.ds, c.lastResult, nil
	}

	ds, result, err := LoadCaseFile(c.path, time.Now())
	if err != nil {
		c.ds = nil
		return nil, result, err
	}
	c.ds = ds
	c.modTime = ds.SourceModTime
	c.lastResult = result
	return ds, result, nil
}

// Invalidate drops the cached dataset so the next Load re-reads the file
// even if its modification time is unchanged.
func (c *DatasetCache) Invalidate() {
	c.mu.Lock()
	c.ds = nil
	c.mu.Unlock()
}
