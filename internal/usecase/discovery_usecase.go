package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/harvester-service/internal/entity"
	"github.com/user/harvester-service/internal/repository"
	"github.com/user/harvester-service/internal/template"
	"github.com/user/harvester-service/pkg/metrics"
)

// DiscoveryCycler endlessly turns categories into search URL templates:
// pick the least recently cycled category, rotate to its next product term,
// query the discovery API and synthesize a template from every candidate
// that echoes the query in its URL.
type DiscoveryCycler struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	templates  repository.TemplateRepository
	discovery  repository.SiteDiscovery
	cooldown   repository.CooldownRepository

	// rotation holds the per-category term index. Cycler-local and
	// ephemeral: it defaults to 0 after a restart, which only repeats one
	// query per category, never loses work.
	rotation map[int64]int

	queryCooldown time.Duration
	pause         time.Duration
	emptyPoll     time.Duration
}

func NewDiscoveryCycler(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	templates repository.TemplateRepository,
	discovery repository.SiteDiscovery,
	cooldown repository.CooldownRepository,
	queryCooldown, pause, emptyPoll time.Duration,
) *DiscoveryCycler {
	return &DiscoveryCycler{
		categories:    categories,
		products:      products,
		templates:     templates,
		discovery:     discovery,
		cooldown:      cooldown,
		rotation:      make(map[int64]int),
		queryCooldown: queryCooldown,
		pause:         pause,
		emptyPoll:     emptyPoll,
	}
}

// Run drives the cycle until the context is cancelled. Only store failures
// escape; everything else is contained per iteration.
func (d *DiscoveryCycler) Run(ctx context.Context) error {
	ctrl := NewCycleController("discovery", discoveryQueue{d.categories}, d.processCategory, d.pause, d.emptyPoll)
	return ctrl.Run(ctx)
}

// discoveryQueue adapts the category repository to the WorkQueue contract.
type discoveryQueue struct {
	categories repository.CategoryRepository
}

func (q discoveryQueue) Next(ctx context.Context) (*entity.Category, error) {
	return q.categories.OldestCycled(ctx)
}

func (q discoveryQueue) MarkProcessed(ctx context.Context, c *entity.Category) error {
	return q.categories.MarkCycled(ctx, c.ID)
}

func (d *DiscoveryCycler) processCategory(ctx context.Context, cat *entity.Category) error {
	terms, err := d.products.ListNamesByCategory(ctx, cat.ID)
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		// Still marked processed by the controller, so an empty category
		// rotates to the back instead of livelocking the queue.
		slog.Info("category has no product terms yet, skipping",
			"category", cat.Name, "category_id", cat.ID)
		metrics.DiscoveryCyclesTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	idx := d.rotation[cat.ID] % len(terms)
	d.rotation[cat.ID] = idx + 1
	term := terms[idx]
	query := cat.Name + " " + term

	if active, err := d.cooldown.Active(ctx, "query:"+query); err == nil && active {
		slog.Info("query recently discovered, skipping", "query", query)
		metrics.DiscoveryCyclesTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	var candidates []string
	err = withRetry(ctx, "discover", func(ctx context.Context) error {
		var derr error
		candidates, derr = d.discovery.Discover(ctx, query)
		return derr
	})
	if err != nil {
		// Discovery API failure is contained: log, count, move on. The
		// category will come around again once the queue wraps.
		slog.Error("site discovery failed", "query", query, "error", err)
		metrics.ErrorsTotal.WithLabelValues("discovery_failed").Inc()
		metrics.DiscoveryCyclesTotal.WithLabelValues("error").Inc()
		return nil
	}

	accepted := 0
	for _, candidate := range candidates {
		tpl, serr := d.synthesize(candidate, query, term)
		if serr != nil {
			slog.Debug("candidate discarded", "candidate", candidate, "error", serr)
			metrics.CandidatesDiscardedTotal.Inc()
			continue
		}
		if err := d.templates.Save(ctx, &entity.SearchTemplate{
			CategoryID:  cat.ID,
			URLTemplate: tpl,
		}); err != nil {
			return fmt.Errorf("persist template: %w", err)
		}
		accepted++
		metrics.TemplatesSavedTotal.Inc()
	}

	if err := d.cooldown.Mark(ctx, "query:"+query, d.queryCooldown); err != nil {
		slog.Warn("failed to mark query cooldown", "query", query, "error", err)
	}

	slog.Info("discovery cycle complete",
		"category", cat.Name, "term", term,
		"candidates", len(candidates), "templates_accepted", accepted)
	metrics.DiscoveryCyclesTotal.WithLabelValues("success").Inc()
	return nil
}

// synthesize tries the full discovery query first, then the bare term, since
// engines echo either form back in result URLs.
func (d *DiscoveryCycler) synthesize(candidate, query, term string) (string, error) {
	tpl, err := template.Synthesize(candidate, query)
	if errors.Is(err, repository.ErrNoPlaceholder) {
		return template.Synthesize(candidate, term)
	}
	return tpl, err
}
