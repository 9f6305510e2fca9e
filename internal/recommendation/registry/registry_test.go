package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCategories = []string{
	"living_areas", "movers", "schools", "banks", "insurance", "electricity", "medical",
	"telecom", "childcare", "storage", "transport", "language_integration", "legal_admin", "tax_finance",
}

func TestRegistry_Get(t *testing.T) {
	r := New(Options{})

	for _, key := range allCategories {
		t.Run(key, func(t *testing.T) {
			p, ok := r.Get(key)
			require.True(t, ok)
			assert.Equal(t, key, p.Key())
			assert.Equal(t, key, p.Dataset())
			assert.NotEmpty(t, p.Title())
		})
	}

	_, ok := r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_ListCategories(t *testing.T) {
	r := New(Options{})

	infos := r.ListCategories()
	require.Len(t, infos, len(allCategories))

	for i, info := range infos {
		assert.Equal(t, allCategories[i], info.Key)
		require.NotNil(t, info.Schema)
		assert.Equal(t, "object", info.Schema.Type)
		assert.NotEmpty(t, info.Schema.Properties)
	}
	assert.Equal(t, allCategories, r.Keys())
	assert.Equal(t, "Language & Integration", infos[11].Title)
}

func TestRegistry_IndependentInstances(t *testing.T) {
	a := New(Options{})
	b := New(Options{Now: func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }})

	pa, _ := a.Get("schools")
	pb, _ := b.Get("schools")
	assert.NotSame(t, pa, pb)
}

func TestRegistry_ConcurrentBuild(t *testing.T) {
	r := New(Options{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Get("movers")
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	first, _ := r.Get("movers")
	second, _ := r.Get("movers")
	assert.Same(t, first, second)
}
