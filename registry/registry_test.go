package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   string
	Name string
}

func TestBaseRegistry_RegisterGetRemove(t *testing.T) {
	r := NewBaseRegistry[widget]()

	require.NoError(t, r.Register("a", widget{ID: "a", Name: "Alpha"}))
	require.Error(t, r.Register("a", widget{ID: "a", Name: "Dup"}))
	require.Error(t, r.Register("", widget{}))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha", got.Name)

	require.NoError(t, r.Remove("a"))
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Error(t, r.Remove("a"))
}

func TestBaseRegistry_ListIsSorted(t *testing.T) {
	r := NewBaseRegistry[widget]()
	for _, n := range []string{"zeta", "alpha", "mike"} {
		require.NoError(t, r.Register(n, widget{ID: n}))
	}
	assert.Equal(t, []string{"alpha", "mike", "zeta"}, r.Names())
	items := r.List()
	require.Len(t, items, 3)
	assert.Equal(t, "alpha", items[0].ID)
	assert.Equal(t, "zeta", items[2].ID)
}

func TestBaseRegistry_ConcurrentAccess(t *testing.T) {
	r := NewBaseRegistry[widget]()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = r.Replace(string(rune('a'+(i%26))), widget{ID: string(rune('a' + (i % 26)))})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			r.Get(string(rune('a' + (i % 26))))
			r.Count()
			r.List()
		}
	}()
	wg.Wait()
	assert.LessOrEqual(t, r.Count(), 26)
}
