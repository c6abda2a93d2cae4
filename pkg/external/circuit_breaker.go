package external

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CitationService is the interface the serving layers use for study
// lookups.
type CitationService interface {
	LookupStudy(ctx context.Context, studyName string, maxResults int) ([]StudyCitation, error)
	FetchByPMID(ctx context.Context, pmid string) (*StudyCitation, error)
	Close() error
}

// ResilientCitationClient wraps the PubMed client with a circuit breaker
// and a cache. When the breaker is open, cached results still serve.
type ResilientCitationClient struct {
	client  *PubMedClient
	cache   CitationCache
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientCitationClient builds the resilient client. A nil cache
// falls back to the no-op cache.
func NewResilientCitationClient(client *PubMedClient, cache CitationCache, logger *logrus.Logger) *ResilientCitationClient {
	if cache == nil {
		cache = NoopCitationCache{}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "PubMed",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientCitationClient{
		client:  client,
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

// LookupStudy resolves a named study, serving from cache when possible.
func (r *ResilientCitationClient) LookupStudy(ctx context.Context, studyName string, maxResults int) ([]StudyCitation, error) {
	cacheKey := fmt.Sprintf("study:%s:%d", studyName, maxResults)

	if cached, found, err := r.cache.Get(ctx, cacheKey); err == nil && found {
		r.logger.WithField("study", studyName).Debug("Citation cache hit")
		return cached, nil
	} else if err != nil {
		r.logger.WithError(err).Warn("Citation cache read failed")
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.LookupStudy(ctx, studyName, maxResults)
	})
	if err != nil {
		return nil, fmt.Errorf("citation lookup failed: %w", err)
	}

	citations := result.([]StudyCitation)
	if err := r.cache.Set(ctx, cacheKey, citations, 0); err != nil {
		r.logger.WithError(err).Warn("Citation cache write failed")
	}
	return citations, nil
}

// FetchByPMID resolves one citation by PMID, serving from cache when
// possible.
func (r *ResilientCitationClient) FetchByPMID(ctx context.Context, pmid string) (*StudyCitation, error) {
	cacheKey := "pmid:" + pmid

	if cached, found, err := r.cache.Get(ctx, cacheKey); err == nil && found {
		if len(cached) == 0 {
			return nil, nil
		}
		return &cached[0], nil
	} else if err != nil {
		r.logger.WithError(err).Warn("Citation cache read failed")
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.FetchByPMID(ctx, pmid)
	})
	if err != nil {
		return nil, fmt.Errorf("citation fetch failed: %w", err)
	}

	citation := result.(*StudyCitation)
	var toCache []StudyCitation
	if citation != nil {
		toCache = []StudyCitation{*citation}
	}
	if err := r.cache.Set(ctx, cacheKey, toCache, 0); err != nil {
		r.logger.WithError(err).Warn("Citation cache write failed")
	}
	return citation, nil
}

// BreakerState exposes the current circuit breaker state for health
// reporting.
func (r *ResilientCitationClient) BreakerState() gobreaker.State {
	return r.breaker.State()
}

// Close releases the cache resources.
func (r *ResilientCitationClient) Close() error {
	return r.cache.Close()
}
