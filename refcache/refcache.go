package refcache

import (
	"context"
	"sync"

	"fournil/db"
	"fournil/models"
	"fournil/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// LoadFunc fetches the reference data the cache is built from.
type LoadFunc func(ctx context.Context) ([]models.Category, []models.Diet, error)

// Cache holds the name↔id mappings for categories and diets. It is built
// explicitly in main and handed to whatever needs it; there is no package
// singleton. Reads and the occasional refresh are serialized by the mutex.
type Cache struct {
	mu          sync.RWMutex
	loadFn      LoadFunc
	categories  map[string]string // name -> id
	categoryIDs map[string]string // id -> name
	diets       map[string]string
	dietIDs     map[string]string
	initialized bool
}

func New() *Cache {
	return NewWithLoader(loadFromMongo)
}

func NewWithLoader(load LoadFunc) *Cache {
	return &Cache{
		loadFn:      load,
		categories:  make(map[string]string),
		categoryIDs: make(map[string]string),
		diets:       make(map[string]string),
		dietIDs:     make(map[string]string),
	}
}

func loadFromMongo(ctx context.Context) ([]models.Category, []models.Diet, error) {
	categories, err := utils.FindAndDecode[models.Category](ctx, db.CategoryCollection, bson.M{})
	if err != nil {
		return nil, nil, err
	}
	diets, err := utils.FindAndDecode[models.Diet](ctx, db.DietCollection, bson.M{})
	if err != nil {
		return nil, nil, err
	}
	return categories, diets, nil
}

// Init populates the cache from storage. Idempotent: subsequent calls are
// no-ops. On failure the flag stays unset so the caller can retry; lookups
// against an unpopulated cache simply report not-found.
func (c *Cache) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	return c.load(ctx)
}

// Refresh clears and reloads, for use after out-of-band edits.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.categories = make(map[string]string)
	c.categoryIDs = make(map[string]string)
	c.diets = make(map[string]string)
	c.dietIDs = make(map[string]string)
	c.initialized = false

	return c.load(ctx)
}

// load runs with c.mu held.
func (c *Cache) load(ctx context.Context) error {
	categories, diets, err := c.loadFn(ctx)
	if err != nil {
		return err
	}

	for _, cat := range categories {
		c.categories[cat.Name] = cat.CategoryID
		c.categoryIDs[cat.CategoryID] = cat.Name
	}
	for _, diet := range diets {
		c.diets[diet.Name] = diet.DietID
		c.dietIDs[diet.DietID] = diet.Name
	}

	c.initialized = true
	return nil
}

func (c *Cache) CategoryID(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.categories[name]
	return id, ok
}

func (c *Cache) CategoryName(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.categoryIDs[id]
	return name, ok
}

func (c *Cache) DietID(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.diets[name]
	return id, ok
}

func (c *Cache) DietName(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.dietIDs[id]
	return name, ok
}

// Categories returns the cached reference list, id+name pairs.
func (c *Cache) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Category, 0, len(c.categoryIDs))
	for id, name := range c.categoryIDs {
		out = append(out, models.Category{CategoryID: id, Name: name})
	}
	return out
}

func (c *Cache) Diets() []models.Diet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Diet, 0, len(c.dietIDs))
	for id, name := range c.dietIDs {
		out = append(out, models.Diet{DietID: id, Name: name})
	}
	return out
}

// AddCategory / RemoveCategory keep the cache current when reference data is
// edited through the API, without a full reload.
func (c *Cache) AddCategory(cat models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories[cat.Name] = cat.CategoryID
	c.categoryIDs[cat.CategoryID] = cat.Name
}

func (c *Cache) RemoveCategory(cat models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.categories, cat.Name)
	delete(c.categoryIDs, cat.CategoryID)
}

func (c *Cache) AddDiet(diet models.Diet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diets[diet.Name] = diet.DietID
	c.dietIDs[diet.DietID] = diet.Name
}

func (c *Cache) RemoveDiet(diet models.Diet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.diets, diet.Name)
	delete(c.dietIDs, diet.DietID)
}
