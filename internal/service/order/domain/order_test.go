package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceIsDenseAndUniqueUnderConcurrency(t *testing.T) {
	const workers, perWorker = 8, 250
	var (
		seq Sequence
		mu  sync.Mutex
		ids = make(map[int64]bool, workers*perWorker)
		wg  sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := seq.Next()
				mu.Lock()
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, ids, workers*perWorker)
	for id := int64(1); id <= workers*perWorker; id++ {
		assert.True(t, ids[id], "missing id %d", id)
	}
}

func TestCatalogPicksCyclically(t *testing.T) {
	products := []string{"Notebook", "Smartphone", "Monitor", "Teclado", "Mouse"}
	c, err := NewCatalog(products)
	require.NoError(t, err)

	products[0] = "mutated"

	var got []string
	for i := 0; i < 7; i++ {
		got = append(got, c.Pick(i))
	}
	assert.Equal(t, []string{"Notebook", "Smartphone", "Monitor", "Teclado", "Mouse", "Notebook", "Smartphone"}, got)
	assert.Equal(t, 5, c.Len())
}

func TestNewCatalogRejectsEmpty(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.Error(t, err)
}

func TestOrderAccessors(t *testing.T) {
	o := NewOrder(42, "Mouse")
	assert.Equal(t, int64(42), o.ID())
	assert.Equal(t, "Mouse", o.Product())
}
