package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/harvester-service/internal/entity"
	"github.com/user/harvester-service/internal/parser"
	"github.com/user/harvester-service/internal/repository"
	"github.com/user/harvester-service/internal/template"
	"github.com/user/harvester-service/pkg/metrics"
	"github.com/user/harvester-service/pkg/utils"
)

// ExtractionCycler endlessly turns templates into product records: pick the
// least recently extracted product, walk every template of its category,
// skip pairs already in the ledger, fetch and parse the rest, and record
// each attempt so it is never repeated.
type ExtractionCycler struct {
	products  repository.ProductRepository
	templates repository.TemplateRepository
	records   repository.ProductRecordRepository
	processed repository.ProcessedURLRepository
	fetcher   repository.PageFetcher
	cooldown  repository.CooldownRepository
	parser    *parser.Parser

	blockCooldown time.Duration
	pause         time.Duration
	emptyPoll     time.Duration
}

func NewExtractionCycler(
	products repository.ProductRepository,
	templates repository.TemplateRepository,
	records repository.ProductRecordRepository,
	processed repository.ProcessedURLRepository,
	fetcher repository.PageFetcher,
	cooldown repository.CooldownRepository,
	p *parser.Parser,
	blockCooldown, pause, emptyPoll time.Duration,
) *ExtractionCycler {
	return &ExtractionCycler{
		products:      products,
		templates:     templates,
		records:       records,
		processed:     processed,
		fetcher:       fetcher,
		cooldown:      cooldown,
		parser:        p,
		blockCooldown: blockCooldown,
		pause:         pause,
		emptyPoll:     emptyPoll,
	}
}

func (e *ExtractionCycler) Run(ctx context.Context) error {
	ctrl := NewCycleController("extraction", extractionQueue{e.products}, e.processProduct, e.pause, e.emptyPoll)
	return ctrl.Run(ctx)
}

// extractionQueue adapts the product repository to the WorkQueue contract.
type extractionQueue struct {
	products repository.ProductRepository
}

func (q extractionQueue) Next(ctx context.Context) (*entity.Product, error) {
	return q.products.OldestExtracted(ctx)
}

func (q extractionQueue) MarkProcessed(ctx context.Context, p *entity.Product) error {
	return q.products.MarkExtracted(ctx, p.ID)
}

func (e *ExtractionCycler) processProduct(ctx context.Context, product *entity.Product) error {
	templates, err := e.templates.ListByCategory(ctx, product.CategoryID)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		slog.Info("no templates for category yet, skipping product",
			"product", product.Name, "category_id", product.CategoryID)
		metrics.ExtractionCyclesTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	for _, tpl := range templates {
		// Shutdown between templates, never between a fetch and its
		// ledger write.
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.processPair(ctx, product, tpl); err != nil {
			return err
		}
	}

	metrics.ExtractionCyclesTotal.WithLabelValues("success").Inc()
	return nil
}

// processPair runs one (product, template) unit of the state machine:
// dedup check, URL construction, fetch+parse, persist, record processed.
// Only store failures are returned.
func (e *ExtractionCycler) processPair(ctx context.Context, product *entity.Product, tpl *entity.SearchTemplate) error {
	exists, err := e.processed.Exists(ctx, product.ID, tpl.ID)
	if err != nil {
		return err
	}
	if exists {
		slog.Debug("pair already processed, skipping",
			"product_id", product.ID, "template_id", tpl.ID)
		return nil
	}

	pageURL, err := template.Build(tpl.URLTemplate, product.Name)
	if err != nil {
		// A template without a placeholder should not exist, but templates
		// can be edited externally. Skip it and keep going.
		slog.Warn("malformed template, skipping",
			"template_id", tpl.ID, "template", tpl.URLTemplate, "error", err)
		metrics.ErrorsTotal.WithLabelValues("malformed_template").Inc()
		return nil
	}

	if host := utils.HostOf(pageURL); host != "" {
		if active, cerr := e.cooldown.Active(ctx, "host:"+host); cerr == nil && active {
			slog.Info("host cooling down after block, skipping",
				"host", host, "product", product.Name)
			return nil
		}
	}

	start := time.Now()
	records, fetchErr := e.fetchAndParse(ctx, pageURL)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	row := &entity.ProcessedURL{
		ProductID:   product.ID,
		TemplateID:  tpl.ID,
		URL:         pageURL,
		ProcessedAt: time.Now(),
	}

	switch {
	case fetchErr == nil:
		saved, serr := e.records.SaveAll(ctx, records)
		if serr != nil {
			metrics.ErrorsTotal.WithLabelValues("db_save_failed").Inc()
			return fmt.Errorf("save product records: %w", serr)
		}
		row.Success = true
		row.ProductsFound = len(records)
		row.ProductsSaved = saved
		metrics.FetchesTotal.WithLabelValues("success").Inc()
		metrics.ProductsSavedTotal.Add(float64(saved))
		slog.Info("extracted products",
			"product", product.Name, "url", pageURL, "found", len(records), "saved", saved)

	case errors.Is(fetchErr, repository.ErrNoProducts):
		// Page loaded fine, it just lists nothing we recognize. A normal
		// outcome, recorded so the pair is never fetched again.
		metrics.FetchesTotal.WithLabelValues("no_products").Inc()
		slog.Info("no products on page", "product", product.Name, "url", pageURL)

	default:
		if errors.Is(fetchErr, repository.ErrFetchBlocked) {
			if host := utils.HostOf(pageURL); host != "" {
				if cerr := e.cooldown.Mark(ctx, "host:"+host, e.blockCooldown); cerr != nil {
					slog.Warn("failed to mark host cooldown", "host", host, "error", cerr)
				}
			}
		}
		metrics.FetchesTotal.WithLabelValues("failed").Inc()
		metrics.ErrorsTotal.WithLabelValues("fetch_failed").Inc()
		slog.Error("fetch or parse failed",
			"product", product.Name, "url", pageURL, "error", fetchErr)
	}

	// The ledger row is written for every attempt, success or failure, so a
	// permanently broken pair is never retried forever.
	if err := e.processed.Save(ctx, row); err != nil {
		return fmt.Errorf("record processed pair: %w", err)
	}
	return nil
}

func (e *ExtractionCycler) fetchAndParse(ctx context.Context, pageURL string) ([]*entity.ProductRecord, error) {
	var html string
	err := withRetry(ctx, "fetch", func(ctx context.Context) error {
		var ferr error
		html, ferr = e.fetcher.Fetch(ctx, pageURL)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return e.parser.Parse(pageURL, html)
}
