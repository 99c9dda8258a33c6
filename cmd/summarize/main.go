// Package main provides a CLI command for summarizing a Turkish news text.
// Usage: haberozet-summarize [--file PATH | --url URL] [--sentences N] [--method tfidf|textrank|abstractive] [--output json]
//
// Without --file or --url the text is read from standard input.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"haberozet/internal/domain/entity"
	"haberozet/internal/infra/cleaner"
	"haberozet/internal/infra/fetcher"
	"haberozet/internal/infra/summarizer"
	"haberozet/internal/nlp/token"
	"haberozet/internal/observability/logging"
	"haberozet/internal/usecase/fetch"
	"haberozet/internal/usecase/summarize"
	pkgconfig "haberozet/pkg/config"
)

const usage = `Usage: haberozet-summarize [--file PATH | --url URL] [--sentences N] [--method tfidf|textrank|abstractive] [--output json]

Examples:
  haberozet-summarize --file haber.txt
  haberozet-summarize --url https://example.com/haber --sentences 5
  cat haber.txt | haberozet-summarize --method tfidf --output json`

// Output is the JSON output format of a summary.
type Output struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	entity.SummaryResult
}

func main() {
	var (
		file         string
		url          string
		sentences    int
		method       string
		outputFormat string
	)

	flag.StringVar(&file, "file", "", "Read the text from this file")
	flag.StringVar(&url, "url", "", "Fetch the article text from this URL")
	flag.IntVar(&sentences, "sentences", 3, "Number of summary sentences (1-10)")
	flag.StringVar(&method, "method", string(entity.DefaultMethod), "Summarization method: tfidf, textrank or abstractive")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if file != "" && url != "" {
		fmt.Fprintln(os.Stderr, "Error: --file and --url are mutually exclusive")
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := entity.ValidateSentenceTarget(sentences); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if _, ok := entity.LookupMethod(method); !ok {
		fmt.Fprintf(os.Stderr, "Error: Invalid method '%s' (must be tfidf, textrank or abstractive)\n", method)
		os.Exit(2)
	}

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	doc, err := readInput(ctx, file, url)
	if err != nil {
		logger.Error("failed to read input", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	backend, err := initBackend(ctx, entity.Method(method))
	if err != nil {
		logger.Error("abstractive backend unavailable", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	svc := summarize.NewService(token.Default(), backend, nil, summarize.DefaultConfig())
	res := svc.Summarize(ctx, summarize.Request{
		Text:           doc.Text,
		SentenceTarget: sentences,
		Method:         method,
	})
	if res.Failed() {
		fmt.Fprintf(os.Stderr, "Error: %s\n", res.Error)
		os.Exit(1)
	}

	if outputFormat == "json" {
		outputJSON(Output{Title: doc.Title, URL: doc.URL, SummaryResult: res})
	} else {
		outputText(doc, res)
	}
}

func readInput(ctx context.Context, file, url string) (*entity.Document, error) {
	switch {
	case url != "":
		cfg, err := fetcher.LoadConfigFromEnv()
		if err != nil {
			return nil, fmt.Errorf("load fetch configuration: %w", err)
		}
		doc, err := fetcher.NewReadabilityFetcher(cfg, cleaner.Default()).Fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fetch.UserMessage(err), err)
		}
		return doc, nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return &entity.Document{Text: string(b)}, nil
	default:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &entity.Document{Text: string(b)}, nil
	}
}

// initBackend loads the generator only when the abstractive method was asked for.
func initBackend(ctx context.Context, method entity.Method) (*summarize.Backend, error) {
	if method != entity.MethodAbstractive {
		return nil, nil
	}
	cfg, err := summarizer.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	backend := summarizer.NewBackend(cfg, pkgconfig.GetEnvInt("ABSTRACTIVE_TOKEN_BUDGET", 512))
	if backend == nil {
		return nil, nil
	}
	if err := backend.Init(ctx); err != nil {
		return nil, err
	}
	return backend, nil
}

func outputText(doc *entity.Document, res entity.SummaryResult) {
	if doc.Title != "" {
		fmt.Printf("%s\n\n", doc.Title)
	}
	fmt.Printf("%s\n\n", res.Summary)
	fmt.Printf("Method: %s\n", res.Method)
	fmt.Printf("Sentences: %d of %d (%.1f%%)\n", len(res.Sentences), res.SentenceCount, res.CompressionRatio)
}

func outputJSON(out Output) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}
