package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/harvester-service/internal/repository"
)

const userAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`

// ChromedpFetcher implements the PageFetcher contract with headless Chrome,
// so JavaScript-rendered listing pages come back as final HTML.
type ChromedpFetcher struct {
	allocatorPool *sync.Pool
	timeout       time.Duration
}

// NewChromedpFetcher creates the fetcher with a pool of exec allocators.
func NewChromedpFetcher(maxConcurrency int, pageLoadTimeout time.Duration) *ChromedpFetcher {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(userAgent),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	// Pre-warm the pool
	for i := 0; i < maxConcurrency; i++ {
		allocCtx := pool.Get().(context.Context)
		pool.Put(allocCtx)
	}

	return &ChromedpFetcher{
		allocatorPool: pool,
		timeout:       pageLoadTimeout,
	}
}

// Fetch navigates to the URL, waits for the body to render and returns the
// page HTML. Timeout and blocked navigations are mapped onto the sentinel
// errors so the caller can tell transient failures from hostile hosts.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx := f.allocatorPool.Get().(context.Context)
	defer f.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, f.timeout)
	defer cancel()

	headers := network.Headers{
		"Accept-Language": "en-US,en;q=0.9",
	}

	var html string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", classifyFetchError(url, err, ctx)
	}
	return html, nil
}

func classifyFetchError(url string, err error, parent context.Context) error {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil:
		return fmt.Errorf("fetch %s: %w", url, repository.ErrFetchTimeout)
	case strings.Contains(msg, "ERR_BLOCKED") ||
		strings.Contains(msg, "ERR_CONNECTION_REFUSED") ||
		strings.Contains(msg, "ERR_TOO_MANY_REDIRECTS"):
		return fmt.Errorf("fetch %s: %w", url, repository.ErrFetchBlocked)
	case strings.Contains(msg, "ERR_NAME_NOT_RESOLVED"):
		return fmt.Errorf("fetch %s: %w", url, repository.ErrNotFound)
	default:
		return fmt.Errorf("fetch %s: %w", url, err)
	}
}
