package lookups

import (
	"sync"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Cache is a read-through cache of the lookup tables. Entries are reloaded
// from the database once older than the TTL. Concurrent reloads are
// coalesced into a single query.
type Cache struct {
	db  *gorm.DB
	ttl time.Duration

	mu          sync.RWMutex
	countries   Countries
	countriesAt time.Time
	roles       Roles
	rolesAt     time.Time
	// generation is bumped by Invalidate. Loads started before the bump
	// do not store their result.
	generation uint64

	group singleflight.Group
	now   func() time.Time
}

// NewCache creates a Cache reading from the given database. A zero ttl
// disables expiration; entries are then only reloaded after Invalidate.
func NewCache(db *gorm.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl, now: time.Now}
}

func (c *Cache) fresh(at time.Time) bool {
	if at.IsZero() {
		return false
	}
	return c.ttl == 0 || c.now().Sub(at) < c.ttl
}

// Countries returns all the countries ordered by name.
func (c *Cache) Countries() (Countries, error) {
	c.mu.RLock()
	if c.fresh(c.countriesAt) {
		list := c.countries
		c.mu.RUnlock()
		return list, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("countries", func() (interface{}, error) {
		gen := c.currentGeneration()
		var list Countries
		if err := c.db.Order("name").Find(&list).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load countries")
		}
		c.mu.Lock()
		if c.generation == gen {
			c.countries = list
			c.countriesAt = c.now()
		}
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Countries), nil
}

// Roles returns all the roles ordered by name.
func (c *Cache) Roles() (Roles, error) {
	c.mu.RLock()
	if c.fresh(c.rolesAt) {
		list := c.roles
		c.mu.RUnlock()
		return list, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("roles", func() (interface{}, error) {
		gen := c.currentGeneration()
		var list Roles
		if err := c.db.Order("name").Find(&list).Error; err != nil {
			return nil, errors.Wrap(err, "failed to load roles")
		}
		c.mu.Lock()
		if c.generation == gen {
			c.roles = list
			c.rolesAt = c.now()
		}
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Roles), nil
}

// Country returns the cached country with the given id.
func (c *Cache) Country(id uint) (*Country, bool, error) {
	list, err := c.Countries()
	if err != nil {
		return nil, false, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], true, nil
		}
	}
	return nil, false, nil
}

// Role returns the cached role with the given id.
func (c *Cache) Role(id uint) (*Role, bool, error) {
	list, err := c.Roles()
	if err != nil {
		return nil, false, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], true, nil
		}
	}
	return nil, false, nil
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Invalidate drops all the cached entries. Loads running at the time of the
// call are not cached, and callers arriving later start a new load.
func (c *Cache) Invalidate() {
	c.group.Forget("countries")
	c.group.Forget("roles")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.countries = nil
	c.countriesAt = time.Time{}
	c.roles = nil
	c.rolesAt = time.Time{}
}
