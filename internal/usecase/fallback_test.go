package usecase

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"ArticlesAggregator/internal/domain"
)

func TestFallbackCacheStartsUninitialized(t *testing.T) {
	t.Parallel()

	cache := NewFallbackCache()
	batch, ok := cache.Snapshot()
	if ok || batch != nil {
		t.Fatalf("Snapshot = %v, %v; want nil, false", batch, ok)
	}
	if !cache.UpdatedAt().IsZero() {
		t.Fatalf("expected zero UpdatedAt, got %v", cache.UpdatedAt())
	}
}

func TestFallbackCacheStoresEmptyBatch(t *testing.T) {
	t.Parallel()

	cache := NewFallbackCache()
	cache.Store(nil)

	batch, ok := cache.Snapshot()
	if !ok {
		t.Fatal("expected initialized cache after storing an empty batch")
	}
	if batch == nil || len(batch) != 0 {
		t.Fatalf("expected empty non-nil batch, got %#v", batch)
	}
}

func TestFallbackCacheIsolatesCallers(t *testing.T) {
	t.Parallel()

	cache := NewFallbackCache()
	stored := scenarioWant()
	cache.Store(stored)

	stored[0].Title = "mutated by writer"

	first, _ := cache.Snapshot()
	if first[0].Title != "A" {
		t.Fatalf("writer mutation leaked into cache: %q", first[0].Title)
	}

	first[1].Title = "mutated by reader"
	second, _ := cache.Snapshot()
	if second[1].Title != "B" {
		t.Fatalf("reader mutation leaked into cache: %q", second[1].Title)
	}
}

func TestFallbackCacheRecordsUpdateTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.November, 8, 12, 0, 0, 0, time.UTC)
	cache := NewFallbackCache()
	cache.clock = func() time.Time { return at }

	cache.Store(scenarioWant())
	if !cache.UpdatedAt().Equal(at) {
		t.Fatalf("UpdatedAt = %v, want %v", cache.UpdatedAt(), at)
	}
}

// Every batch written here carries its generation in each Title; a reader must
// never see two generations in one snapshot.
func TestFallbackCacheConcurrentAccessNeverMixesBatches(t *testing.T) {
	t.Parallel()

	const (
		writers   = 4
		readers   = 8
		rounds    = 200
		batchSize = 16
	)

	cache := NewFallbackCache()
	var wg sync.WaitGroup

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				generation := strconv.Itoa(w*rounds + r)
				batch := make([]domain.DisplayArticle, batchSize)
				for i := range batch {
					batch[i] = domain.DisplayArticle{ID: strconv.Itoa(i), Title: generation}
				}
				cache.Store(batch)
			}
		}(w)
	}

	errs := make(chan string, readers)
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				batch, ok := cache.Snapshot()
				if !ok {
					continue
				}
				if len(batch) != batchSize {
					errs <- "snapshot has unexpected length " + strconv.Itoa(len(batch))
					return
				}
				for _, article := range batch {
					if article.Title != batch[0].Title {
						errs <- "snapshot mixes generations " + batch[0].Title + " and " + article.Title
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}
