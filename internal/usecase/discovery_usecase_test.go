package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/harvester-service/internal/entity"
	"github.com/user/harvester-service/internal/repository"
)

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories []*entity.Category
	marked     []int64
}

func (f *fakeCategoryRepo) markedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.marked...)
}

func (f *fakeCategoryRepo) OldestCycled(context.Context) (*entity.Category, error) {
	if len(f.categories) == 0 {
		return nil, repository.ErrEmptyQueue
	}
	best := f.categories[0]
	for _, c := range f.categories[1:] {
		if olderCategory(c, best) {
			best = c
		}
	}
	return best, nil
}

func olderCategory(a, b *entity.Category) bool {
	switch {
	case a.LastCycledAt == nil && b.LastCycledAt == nil:
		return a.ID < b.ID
	case a.LastCycledAt == nil:
		return true
	case b.LastCycledAt == nil:
		return false
	default:
		return a.LastCycledAt.Before(*b.LastCycledAt)
	}
}

func (f *fakeCategoryRepo) MarkCycled(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	now := time.Now()
	for _, c := range f.categories {
		if c.ID == id {
			c.LastCycledAt = &now
		}
	}
	return nil
}

type fakeProductRepo struct {
	byCategory map[int64][]string
}

func (f *fakeProductRepo) OldestExtracted(context.Context) (*entity.Product, error) {
	return nil, repository.ErrEmptyQueue
}
func (f *fakeProductRepo) MarkExtracted(context.Context, int64) error { return nil }
func (f *fakeProductRepo) ListNamesByCategory(_ context.Context, categoryID int64) ([]string, error) {
	return f.byCategory[categoryID], nil
}

type fakeTemplateRepo struct {
	saved []*entity.SearchTemplate
}

func (f *fakeTemplateRepo) Save(_ context.Context, tpl *entity.SearchTemplate) error {
	for _, existing := range f.saved {
		if existing.CategoryID == tpl.CategoryID && existing.URLTemplate == tpl.URLTemplate {
			return nil // unique constraint: duplicate insert is a no-op
		}
	}
	f.saved = append(f.saved, tpl)
	return nil
}

func (f *fakeTemplateRepo) ListByCategory(_ context.Context, categoryID int64) ([]*entity.SearchTemplate, error) {
	var out []*entity.SearchTemplate
	for _, tpl := range f.saved {
		if tpl.CategoryID == categoryID {
			out = append(out, tpl)
		}
	}
	return out, nil
}

type fakeDiscovery struct {
	results map[string][]string
	queries []string
	err     error
}

func (f *fakeDiscovery) Discover(_ context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeCooldown struct {
	keys map[string]bool
}

func newFakeCooldown() *fakeCooldown { return &fakeCooldown{keys: map[string]bool{}} }

func (f *fakeCooldown) Mark(_ context.Context, key string, _ time.Duration) error {
	f.keys[key] = true
	return nil
}

func (f *fakeCooldown) Active(_ context.Context, key string) (bool, error) {
	return f.keys[key], nil
}

func newTestDiscoveryCycler(cats *fakeCategoryRepo, prods *fakeProductRepo,
	tpls *fakeTemplateRepo, disc *fakeDiscovery, cd *fakeCooldown) *DiscoveryCycler {
	return NewDiscoveryCycler(cats, prods, tpls, disc, cd,
		time.Hour, 0, time.Millisecond)
}

func TestDiscoveryRotatesTermsAndSynthesizes(t *testing.T) {
	electronics := &entity.Category{ID: 1, Name: "Electronics"}
	cats := &fakeCategoryRepo{categories: []*entity.Category{electronics}}
	prods := &fakeProductRepo{byCategory: map[int64][]string{1: {"laptop", "phone"}}}
	tpls := &fakeTemplateRepo{}
	disc := &fakeDiscovery{results: map[string][]string{
		"Electronics laptop": {
			"https://shop-a.example/search?q=Electronics+laptop",
			"https://shop-b.example/bestsellers", // no query echo, discarded
		},
		"Electronics phone": {
			"https://shop-c.example/find/phone", // bare term echo
		},
	}}
	cd := newFakeCooldown()
	d := newTestDiscoveryCycler(cats, prods, tpls, disc, cd)
	ctx := context.Background()

	// First pass uses the first term.
	if err := d.processCategory(ctx, electronics); err != nil {
		t.Fatalf("processCategory: %v", err)
	}
	if len(disc.queries) != 1 || disc.queries[0] != "Electronics laptop" {
		t.Fatalf("queries = %v, want [Electronics laptop]", disc.queries)
	}
	if len(tpls.saved) != 1 {
		t.Fatalf("saved %d templates, want 1", len(tpls.saved))
	}
	want := "https://shop-a.example/search?q={query}"
	if tpls.saved[0].URLTemplate != want {
		t.Errorf("template = %q, want %q", tpls.saved[0].URLTemplate, want)
	}

	// Second pass rotates to the next term; the candidate echoes only the
	// bare term, which still synthesizes.
	if err := d.processCategory(ctx, electronics); err != nil {
		t.Fatalf("processCategory: %v", err)
	}
	if len(disc.queries) != 2 || disc.queries[1] != "Electronics phone" {
		t.Fatalf("queries = %v, want second query Electronics phone", disc.queries)
	}
	if len(tpls.saved) != 2 {
		t.Fatalf("saved %d templates, want 2", len(tpls.saved))
	}
	if got := tpls.saved[1].URLTemplate; got != "https://shop-c.example/find/{query}" {
		t.Errorf("template = %q, want bare-term substitution", got)
	}

	// Third pass wraps back to the first term, but its query is still
	// cooling down, so the discovery API is not hit again.
	if err := d.processCategory(ctx, electronics); err != nil {
		t.Fatalf("processCategory: %v", err)
	}
	if len(disc.queries) != 2 {
		t.Fatalf("queries = %v, cooldown must prevent a repeat query", disc.queries)
	}
}

func TestDiscoverySkipsEmptyCategory(t *testing.T) {
	empty := &entity.Category{ID: 7, Name: "Garden"}
	cats := &fakeCategoryRepo{categories: []*entity.Category{empty}}
	prods := &fakeProductRepo{byCategory: map[int64][]string{}}
	disc := &fakeDiscovery{}
	d := newTestDiscoveryCycler(cats, prods, &fakeTemplateRepo{}, disc, newFakeCooldown())

	if err := d.processCategory(context.Background(), empty); err != nil {
		t.Fatalf("processCategory: %v", err)
	}
	if len(disc.queries) != 0 {
		t.Fatalf("queries = %v, want none for an empty category", disc.queries)
	}
}

func TestDiscoveryContainsAPIFailure(t *testing.T) {
	cat := &entity.Category{ID: 1, Name: "Electronics"}
	cats := &fakeCategoryRepo{categories: []*entity.Category{cat}}
	prods := &fakeProductRepo{byCategory: map[int64][]string{1: {"laptop"}}}
	disc := &fakeDiscovery{err: errors.New("api gone")}
	d := newTestDiscoveryCycler(cats, prods, &fakeTemplateRepo{}, disc, newFakeCooldown())

	// API failure is contained so the cycle keeps moving; it must not bubble
	// up and crash the cycler.
	if err := d.processCategory(context.Background(), cat); err != nil {
		t.Fatalf("processCategory = %v, want nil on contained API failure", err)
	}
}

func TestDiscoveryTemplateSaveIsIdempotent(t *testing.T) {
	cat := &entity.Category{ID: 1, Name: "Electronics"}
	cats := &fakeCategoryRepo{categories: []*entity.Category{cat}}
	prods := &fakeProductRepo{byCategory: map[int64][]string{1: {"laptop"}}}
	tpls := &fakeTemplateRepo{}
	disc := &fakeDiscovery{results: map[string][]string{
		"Electronics laptop": {
			"https://shop-a.example/search?q=Electronics+laptop",
			"https://shop-a.example/search?q=Electronics+laptop",
		},
	}}
	d := newTestDiscoveryCycler(cats, prods, tpls, disc, newFakeCooldown())

	if err := d.processCategory(context.Background(), cat); err != nil {
		t.Fatalf("processCategory: %v", err)
	}
	if len(tpls.saved) != 1 {
		t.Fatalf("saved %d templates, want 1: duplicates must collapse", len(tpls.saved))
	}
}

func TestDiscoveryRunPicksOldestCategory(t *testing.T) {
	earlier := time.Now().Add(-time.Hour)
	cats := &fakeCategoryRepo{categories: []*entity.Category{
		{ID: 1, Name: "Electronics", LastCycledAt: &earlier},
		{ID: 2, Name: "Books"}, // never cycled, selected first
	}}
	prods := &fakeProductRepo{byCategory: map[int64][]string{}}
	d := newTestDiscoveryCycler(cats, prods, &fakeTemplateRepo{}, &fakeDiscovery{}, newFakeCooldown())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for len(cats.markedIDs()) < 2 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	_ = d.Run(ctx)

	marked := cats.markedIDs()
	if len(marked) < 2 || marked[0] != 2 || marked[1] != 1 {
		t.Fatalf("marked order = %v, want never-cycled category first", marked)
	}
}
