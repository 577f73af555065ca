package engine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/search/query"
	"github.com/vk/searchengine/internal/search/result"
)

// DefaultTimeout bounds a single upstream engine request.
const DefaultTimeout = 5 * time.Second

// Recorder receives per-engine outcome metrics after every fan-out.
type Recorder interface {
	RecordSuccess(ctx context.Context, engine string, resultCount int, elapsed time.Duration)
	RecordErrors(ctx context.Context, errs map[string]error)
}

// Searcher fans a query out to every eligible engine concurrently. Each
// engine sits behind its own circuit breaker so a flapping upstream stops
// being queried instead of slowing every search down.
type Searcher struct {
	client   *http.Client
	engines  []Engine
	breakers map[string]*gobreaker.CircuitBreaker[[]result.Result]
	recorder Recorder
	timeout  time.Duration
}

// NewSearcher creates a searcher over the given engines. recorder may be nil.
func NewSearcher(client *http.Client, engines []Engine, recorder Recorder, timeout time.Duration) *Searcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker[[]result.Result], len(engines))
	for _, e := range engines {
		breakers[e.Name()] = gobreaker.NewCircuitBreaker[[]result.Result](gobreaker.Settings{
			Name:    e.Name(),
			Timeout: 30 * time.Second,
		})
	}

	return &Searcher{
		client:   client,
		engines:  engines,
		breakers: breakers,
		recorder: recorder,
		timeout:  timeout,
	}
}

// Eligible returns the engines able to serve the query: matching mode,
// covering the query's language, and supporting every extension it uses.
func (s *Searcher) Eligible(q *query.ParsedQuery) []Engine {
	var eligible []Engine
	required := q.RequiredExtensions()
	for _, e := range s.engines {
		if e.Mode() != q.Mode {
			continue
		}
		if !e.SupportsLanguage(q.Lang) {
			continue
		}
		if !e.Extensions().Contains(required) {
			continue
		}
		eligible = append(eligible, e)
	}
	return eligible
}

// Search queries all eligible engines and merges their results. Engine
// failures never fail the search; they come back in the error map keyed by
// engine name.
func (s *Searcher) Search(ctx context.Context, q *query.ParsedQuery) ([]result.Rated, map[string]error) {
	logger := ctxlog.FromContext(ctx)
	eligible := s.Eligible(q)
	logger.Debug("Engine fan-out starting.", "engines", len(eligible), "lang", q.Lang, "mode", q.Mode)

	byEngine := make(map[string][]result.Result, len(eligible))
	weights := make(map[string]float64, len(eligible))
	errs := map[string]error{}
	var mu sync.Mutex

	var g errgroup.Group
	for _, e := range eligible {
		g.Go(func() error {
			start := time.Now()
			results, err := s.breakers[e.Name()].Execute(func() ([]result.Result, error) {
				return s.queryEngine(ctx, e, q)
			})
			elapsed := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Engine failed.", "engine", e.Name(), "error", err)
				errs[e.Name()] = err
				return nil
			}
			byEngine[e.Name()] = results
			weights[e.Name()] = e.Weight()
			if s.recorder != nil {
				s.recorder.RecordSuccess(ctx, e.Name(), len(results), elapsed)
			}
			return nil
		})
	}
	g.Wait()

	if s.recorder != nil && len(errs) > 0 {
		s.recorder.RecordErrors(ctx, errs)
	}

	rated := result.Merge(byEngine, weights)
	logger.Debug("Engine fan-out finished.", "results", len(rated), "errors", len(errs))
	return rated, errs
}

// queryEngine performs one bounded upstream request.
func (s *Searcher) queryEngine(ctx context.Context, e Engine, q *query.ParsedQuery) ([]result.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := e.NewRequest(ctx, q)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusCodeError{Engine: e.Name(), Code: resp.StatusCode, Status: resp.Status}
	}

	return e.ParseResponse(resp)
}
