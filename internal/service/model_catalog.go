package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

const modelsCacheKey = "models"

// ModelCatalog lists the backend's models and tracks the chosen one. The
// first model is selected automatically when nothing is chosen yet.
type ModelCatalog struct {
	lister   domain.ModelLister
	notifier domain.Notifier
	log      *zap.Logger
	ttl      time.Duration
	cache    *cache.Cache

	mu       sync.RWMutex
	models   []string
	selected string
	loading  bool
	subs     subscribers
}

// NewModelCatalog caches the model list for ttl. A non-positive ttl disables caching.
func NewModelCatalog(lister domain.ModelLister, notifier domain.Notifier, log *zap.Logger, ttl time.Duration) *ModelCatalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &ModelCatalog{
		lister:   lister,
		notifier: orNop(notifier),
		log:      log,
		ttl:      ttl,
		loading:  true,
	}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

// Subscribe registers fn to run after every state change.
func (c *ModelCatalog) Subscribe(fn func()) (cancel func()) { return c.subs.add(fn) }

// Load fetches the model list, serving it from the cache while fresh.
func (c *ModelCatalog) Load(ctx context.Context) error { return c.load(ctx, false) }

// Refresh fetches the model list bypassing the cache.
func (c *ModelCatalog) Refresh(ctx context.Context) error { return c.load(ctx, true) }

func (c *ModelCatalog) load(ctx context.Context, force bool) error {
	if !force && c.cache != nil {
		if x, ok := c.cache.Get(modelsCacheKey); ok {
			c.apply(x.([]string))
			return nil
		}
	}

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	c.subs.notify()

	models, err := c.lister.ListModels(ctx)
	if err != nil {
		c.log.Warn("list models failed", zap.Error(err))
		notifyError(c.notifier, "Error fetching models: %s", domain.Detail(err, "Failed to fetch models from server"))
		if c.cache != nil {
			c.cache.Delete(modelsCacheKey)
		}
		c.mu.Lock()
		c.models = nil
		c.loading = false
		c.mu.Unlock()
		c.subs.notify()
		return err
	}
	if c.cache != nil {
		c.cache.Set(modelsCacheKey, append([]string(nil), models...), cache.DefaultExpiration)
	}
	c.log.Debug("models loaded", zap.Strings("models", models))
	c.apply(models)
	return nil
}

func (c *ModelCatalog) apply(models []string) {
	c.mu.Lock()
	c.models = append([]string(nil), models...)
	c.loading = false
	if c.selected == "" && len(c.models) > 0 {
		c.selected = c.models[0]
	}
	c.mu.Unlock()
	c.subs.notify()
}

// Select chooses name, which must be one of the listed models.
func (c *ModelCatalog) Select(name string) error {
	c.mu.Lock()
	if !slices.Contains(c.models, name) {
		c.mu.Unlock()
		return &domain.ValidationError{Reason: fmt.Sprintf("unknown model %q", name)}
	}
	c.selected = name
	c.mu.Unlock()
	c.subs.notify()
	return nil
}

// Cycle selects the model after the current one, wrapping around.
func (c *ModelCatalog) Cycle() {
	c.mu.Lock()
	if len(c.models) == 0 {
		c.mu.Unlock()
		return
	}
	next := (slices.Index(c.models, c.selected) + 1) % len(c.models)
	c.selected = c.models[next]
	c.mu.Unlock()
	c.subs.notify()
}

// Selected returns the chosen model, or "" when none is chosen.
func (c *ModelCatalog) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Models returns a copy of the listed models.
func (c *ModelCatalog) Models() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.models...)
}

// Loading reports whether the list has not been fetched yet or a fetch is in progress.
func (c *ModelCatalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}
