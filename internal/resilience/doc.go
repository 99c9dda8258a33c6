// Package resilience groups the fault tolerance helpers used around network
// collaborators: circuit breakers for article downloads, feed reads, generation
// backends and the digest database, and retry with exponential backoff.
//
// The extractive pipeline itself never retries.
//
//	cb := circuitbreaker.New(circuitbreaker.ArticleFetchConfig())
//	doc, err := circuitbreaker.Do(cb, func() (*entity.Document, error) {
//	    return download(ctx, url)
//	})
//
//	err := retry.WithBackoff(ctx, retry.DBConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
