// internal/recommendation/registry/registry.go
package registry

import (
	"sync"
	"time"

	"github.com/rlecomte1929/rolec/internal/recommendation/model"
	"github.com/rlecomte1929/rolec/internal/recommendation/plugins"
)

// Options tunes plugin construction.
type Options struct {
	// Now is the clock used by date-aware scorers. Defaults to time.Now.
	Now func() time.Time
}

// Registry maps category keys to scorer plugins. The table is built on first use and never
// changes afterwards, so a Registry is safe for concurrent use.
type Registry struct {
	opts Options

	once    sync.Once
	order   []model.Plugin
	plugins map[string]model.Plugin
}

func New(opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{opts: opts}
}

func (r *Registry) build() {
	r.once.Do(func() {
		r.order = []model.Plugin{
			plugins.NewLivingAreas(),
			plugins.NewMovers(),
			plugins.NewSchools(r.opts.Now),
			plugins.NewBanks(),
			plugins.NewInsurance(),
			plugins.NewElectricity(),
			plugins.NewMedical(),
			plugins.NewTelecom(),
			plugins.NewChildcare(),
			plugins.NewStorage(),
			plugins.NewTransport(),
			plugins.NewLanguageIntegration(),
			plugins.NewLegalAdmin(),
			plugins.NewTaxFinance(),
		}
		r.plugins = make(map[string]model.Plugin, len(r.order))
		for _, p := range r.order {
			r.plugins[p.Key()] = p
		}
	})
}

// Get returns the plugin registered for category.
func (r *Registry) Get(category string) (model.Plugin, bool) {
	r.build()
	p, ok := r.plugins[category]
	return p, ok
}

// ListCategories describes every registered category in registration order.
func (r *Registry) ListCategories() []model.CategoryInfo {
	r.build()
	out := make([]model.CategoryInfo, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, model.CategoryInfo{Key: p.Key(), Title: p.Title(), Schema: p.Schema()})
	}
	return out
}

// Keys returns the registered category keys in registration order.
func (r *Registry) Keys() []string {
	r.build()
	keys := make([]string, 0, len(r.order))
	for _, p := range r.order {
		keys = append(keys, p.Key())
	}
	return keys
}
