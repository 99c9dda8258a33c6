package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"haberozet/internal/domain/entity"
	"haberozet/internal/infra/cleaner"
	"haberozet/internal/observability/metrics"
	"haberozet/internal/resilience/circuitbreaker"
	"haberozet/internal/resilience/retry"
	"haberozet/internal/usecase/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// blockSelector lists the elements whose text becomes one paragraph.
const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, figcaption"

// ReadabilityFetcher implements fetch.ArticleFetcher using the Mozilla
// Readability algorithm.
//
// Downloads go through a retry loop and a circuit breaker. Extracted text is
// split into paragraphs, cleaned of page furniture and rejected when too
// short to summarize.
//
// Thread safety: ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	cleaner *cleaner.Cleaner
	retry   retry.Config
	config  Config
}

// page is a downloaded HTML document.
type page struct {
	body []byte
	url  *url.URL
}

// NewReadabilityFetcher creates a ReadabilityFetcher. A nil cleaner uses the
// built-in rule set.
func NewReadabilityFetcher(config Config, c *cleaner.Cleaner) *ReadabilityFetcher {
	if c == nil {
		c = cleaner.Default()
	}

	cbConfig := circuitbreaker.ArticleFetchConfig()
	cbConfig.IsSuccessful = func(err error) bool {
		// errors caused by the requested URL say nothing about site health
		return err == nil ||
			errors.Is(err, fetch.ErrBodyTooLarge) ||
			errors.Is(err, fetch.ErrTooManyRedirects) ||
			errors.Is(err, fetch.ErrPrivateIP) ||
			errors.Is(err, fetch.ErrInvalidURL) ||
			errors.Is(err, context.Canceled)
	}

	retryConfig := retry.ArticleFetchConfig()
	retryConfig.MaxAttempts = config.RetryAttempts
	if config.RetryDelay > 0 {
		retryConfig.InitialDelay = config.RetryDelay
	}

	f := &ReadabilityFetcher{
		breaker: circuitbreaker.New(cbConfig),
		cleaner: c,
		retry:   retryConfig,
		config:  config,
	}

	f.client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", fetch.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return f
}

// Fetch downloads the article at urlStr and returns its title and cleaned text.
// The returned document keeps the requested URL even after redirects.
func (f *ReadabilityFetcher) Fetch(ctx context.Context, urlStr string) (*entity.Document, error) {
	start := time.Now()

	doc, err := f.fetch(ctx, urlStr)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		slog.WarnContext(ctx, "article fetch failed",
			slog.String("url", urlStr),
			slog.Any("error", err))
		return nil, err
	}

	metrics.RecordContentFetchSuccess(time.Since(start), len(doc.Text))
	return doc, nil
}

func (f *ReadabilityFetcher) fetch(ctx context.Context, urlStr string) (*entity.Document, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	pg, err := retry.Do(ctx, f.retry, func() (*page, error) {
		return circuitbreaker.Do(f.breaker, func() (*page, error) {
			return f.download(ctx, urlStr)
		})
	})
	if err != nil {
		return nil, err
	}

	title, text, err := extract(pg.body, pg.url)
	if err != nil {
		return nil, err
	}

	text = f.cleaner.Clean(text, title)
	if utf8.RuneCountInString(text) < f.config.MinContentLength {
		return nil, fmt.Errorf("%w: %d characters after cleaning", fetch.ErrNotEnoughContent, utf8.RuneCountInString(text))
	}

	return &entity.Document{
		Title: title,
		Text:  text,
		URL:   urlStr,
	}, nil
}

// download performs one HTTP request and reads the body under the size limit.
func (f *ReadabilityFetcher) download(ctx context.Context, urlStr string) (*page, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", fetch.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", fetch.ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, retry.NewHTTPError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size exceeds limit %d bytes",
			fetch.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	finalURL := resp.Request.URL
	if finalURL == nil {
		finalURL, _ = url.Parse(urlStr)
	}

	return &page{body: body, url: finalURL}, nil
}

// extract returns the article title and its text with one paragraph per block
// element, separated by blank lines. Readability output is preferred; the raw
// page is used when readability finds nothing.
func extract(body []byte, pageURL *url.URL) (string, string, error) {
	var title, text string

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		title = strings.TrimSpace(article.Title)
		text = blockText(article.Content)
		if text == "" {
			text = strings.TrimSpace(article.TextContent)
		}
	}

	dom, domErr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if domErr == nil {
		if title == "" {
			title = pageTitle(dom)
		}
		if text == "" {
			text = selectionText(dom.Find("article, main").First())
			if text == "" {
				text = selectionText(dom.Selection)
			}
		}
	}

	if text == "" {
		if err == nil {
			err = domErr
		}
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", fetch.ErrReadabilityFailed, err)
		}
		return "", "", fmt.Errorf("%w: no readable content found", fetch.ErrReadabilityFailed)
	}

	return title, text, nil
}

func blockText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return selectionText(dom.Selection)
}

// selectionText joins the text of outermost block elements under s.
func selectionText(s *goquery.Selection) string {
	var paragraphs []string
	s.Find(blockSelector).Each(func(_ int, block *goquery.Selection) {
		if block.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if p := strings.Join(strings.Fields(block.Text()), " "); p != "" {
			paragraphs = append(paragraphs, p)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

// pageTitle falls back from og:title to <title> to the first h1.
func pageTitle(dom *goquery.Document) string {
	if og, ok := dom.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if t := strings.TrimSpace(dom.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(dom.Find("h1").First().Text())
}
