package domain

import (
	"fmt"
	"slices"
)

// MetaCache is the batch-scoped set of metadata records minted so far. It is
// not safe for concurrent use: one batch owns one cache. Parallel batches must
// be sharded by platform number so that a configuration is only ever minted by
// one cache.
type MetaCache struct {
	seen []MetaRecord
}

// NewMetaCache returns an empty cache.
func NewMetaCache() *MetaCache {
	return &MetaCache{}
}

// Resolve returns the record whose fields equal candidate, scanning in
// insertion order. Without a match it mints "<platform>_m<n>" where n is the
// number of records already held, appends it, and reports it as new.
func (c *MetaCache) Resolve(candidate MetaFields) (MetaRecord, bool) {
	for _, rec := range c.seen {
		if rec.Equal(candidate) {
			return rec, false
		}
	}
	rec := MetaRecord{
		ID:         fmt.Sprintf("%s_m%d", candidate.PlatformNumber, len(c.seen)),
		MetaFields: candidate,
	}
	c.seen = append(c.seen, rec)
	return rec, true
}

// Retract removes a record that could not be persisted so a later file with
// the same configuration mints it again. It reports whether id was held.
func (c *MetaCache) Retract(id string) bool {
	for i, rec := range c.seen {
		if rec.ID == id {
			c.seen = slices.Delete(c.seen, i, i+1)
			return true
		}
	}
	return false
}

// Len returns the number of records held.
func (c *MetaCache) Len() int {
	return len(c.seen)
}

// Records returns a copy of the held records in insertion order.
func (c *MetaCache) Records() []MetaRecord {
	return slices.Clone(c.seen)
}
