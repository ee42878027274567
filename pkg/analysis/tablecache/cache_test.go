package tablecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krussell101/data-visualizer/pkg/dataset"
	"github.com/Krussell101/data-visualizer/pkg/table"
)

func testTable(name string) *table.Table {
	return &table.Table{
		Columns: []table.Column{{Name: name, Dtype: "string"}},
		Rows:    [][]string{{"a"}, {"b"}},
	}
}

func TestGetOrLoadCachesResult(t *testing.T) {
	c := New(4)

	var calls int32
	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		atomic.AddInt32(&calls, 1)
		return testTable(id), nil
	})

	tbl1, err := c.GetOrLoad(context.Background(), "ds-1", "fp-1", loader)
	require.NoError(t, err)
	tbl2, err := c.GetOrLoad(context.Background(), "ds-1", "fp-1", loader)
	require.NoError(t, err)

	assert.Same(t, tbl1, tbl2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, 1, c.Len())
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	c := New(4)

	var calls int32
	release := make(chan struct{})
	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return testTable(id), nil
	})

	const workers = 16
	results := make([]*table.Table, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := c.GetOrLoad(context.Background(), "ds-1", "fp-1", loader)
			assert.NoError(t, err)
			results[i] = tbl
		}(i)
	}

	// Let every goroutine reach the flight before the load completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "concurrent misses must collapse into one load")
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i], "all waiters must share the loaded table")
	}
}

func TestFingerprintChangeInvalidatesEntry(t *testing.T) {
	c := New(4)

	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		return testTable(fp), nil
	})

	old, err := c.GetOrLoad(context.Background(), "ds-1", "fp-old", loader)
	require.NoError(t, err)

	fresh, err := c.GetOrLoad(context.Background(), "ds-1", "fp-new", loader)
	require.NoError(t, err)

	assert.NotSame(t, old, fresh)
	assert.Equal(t, "fp-new", fresh.Columns[0].Name)
	assert.Equal(t, 1, c.Len(), "stale entry must be dropped, not kept alongside")

	// The new fingerprint now hits without another load
	before := c.LoadCount()
	again, err := c.GetOrLoad(context.Background(), "ds-1", "fp-new", loader)
	require.NoError(t, err)
	assert.Same(t, fresh, again)
	assert.Equal(t, before, c.LoadCount())
}

func TestLRUEviction(t *testing.T) {
	c := New(2)

	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		return testTable(id), nil
	})

	for _, id := range []string{"ds-1", "ds-2"} {
		_, err := c.GetOrLoad(context.Background(), id, "fp", loader)
		require.NoError(t, err)
	}

	// Touch ds-1 so ds-2 becomes the eviction candidate
	_, err := c.GetOrLoad(context.Background(), "ds-1", "fp", loader)
	require.NoError(t, err)

	_, err = c.GetOrLoad(context.Background(), "ds-3", "fp", loader)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())

	before := c.LoadCount()
	_, err = c.GetOrLoad(context.Background(), "ds-1", "fp", loader)
	require.NoError(t, err)
	assert.Equal(t, before, c.LoadCount(), "ds-1 should still be cached")

	_, err = c.GetOrLoad(context.Background(), "ds-2", "fp", loader)
	require.NoError(t, err)
	assert.Equal(t, before+1, c.LoadCount(), "ds-2 should have been evicted and reloaded")
}

func TestEvictedTableStaysUsable(t *testing.T) {
	c := New(1)

	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		return testTable(id), nil
	})

	held, err := c.GetOrLoad(context.Background(), "ds-1", "fp", loader)
	require.NoError(t, err)

	// Evict ds-1 by loading another dataset into the single slot
	_, err = c.GetOrLoad(context.Background(), "ds-2", "fp", loader)
	require.NoError(t, err)

	assert.Equal(t, "ds-1", held.Columns[0].Name)
	assert.Equal(t, 2, held.RowCount())
}

func TestLoaderFailurePropagates(t *testing.T) {
	c := New(4)

	boom := errors.New("file unreadable")
	var calls int32
	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	})

	_, err := c.GetOrLoad(context.Background(), "ds-1", "fp", loader)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len(), "failed load must leave no entry")

	// Next call retries the loader rather than caching the failure
	_, err = c.GetOrLoad(context.Background(), "ds-1", "fp", loader)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestInvalidate(t *testing.T) {
	c := New(4)

	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		return testTable(id), nil
	})

	_, err := c.GetOrLoad(context.Background(), "ds-1", "fp", loader)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	c.Invalidate("ds-1")
	assert.Equal(t, 0, c.Len())

	c.Invalidate("ds-unknown") // no-op
}

func TestCapacityBound(t *testing.T) {
	c := New(3)

	loader := dataset.LoaderFunc(func(ctx context.Context, id, fp string) (*table.Table, error) {
		return testTable(id), nil
	})

	for i := 0; i < 10; i++ {
		_, err := c.GetOrLoad(context.Background(), fmt.Sprintf("ds-%d", i), "fp", loader)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.Len())
}
