// README: Geocoding service: min-length guard, result cap, cache and request collapsing.
package geocoding

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"vtcride/internal/logger"
	"vtcride/internal/maps"
)

const (
	DefaultMinQueryLen   = 3
	defaultLookupTimeout = 10 * time.Second
)

// Searcher is what a search session needs from the service.
type Searcher interface {
	Search(ctx context.Context, query string) ([]maps.PlaceCandidate, error)
}

type Options struct {
	Provider    string
	Region      maps.Region
	MinQueryLen int

	// LookupTimeout bounds a shared provider request once it is detached
	// from the caller that started it.
	LookupTimeout time.Duration
	Cache         Cache
	Logger        logger.Logger
}

type Service struct {
	geocoder maps.Geocoder
	opts     Options
	group    singleflight.Group
}

func NewService(geocoder maps.Geocoder, opts Options) *Service {
	if opts.MinQueryLen <= 0 {
		opts.MinQueryLen = DefaultMinQueryLen
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = defaultLookupTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Service{geocoder: geocoder, opts: opts}
}

func (s *Service) MinQueryLen() int { return s.opts.MinQueryLen }

// Searchable reports whether query is long enough to be sent.
func (s *Service) Searchable(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= s.opts.MinQueryLen
}

// Search returns at most Region.Limit candidates in provider order. Short
// queries return an empty list without touching the provider.
func (s *Service) Search(ctx context.Context, query string) ([]maps.PlaceCandidate, error) {
	query = strings.TrimSpace(query)
	if !s.Searchable(query) {
		return []maps.PlaceCandidate{}, nil
	}
	if s.geocoder == nil {
		return nil, maps.ErrNotConfigured
	}

	key := cacheKey(s.opts.Provider, s.opts.Region, query)
	if s.opts.Cache != nil {
		cached, ok, err := s.opts.Cache.Get(ctx, key)
		if err != nil {
			s.opts.Logger.Warn("geocode cache read failed", logger.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	// Collapsed callers share one provider request, so it must not die with
	// whichever caller happened to start it.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.LookupTimeout)
		defer cancel()
		return s.lookup(reqCtx, key, query)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]maps.PlaceCandidate), nil
	}
}

func (s *Service) lookup(ctx context.Context, key, query string) ([]maps.PlaceCandidate, error) {
	start := time.Now()
	candidates, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	if limit := s.opts.Region.Limit; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		candidates = []maps.PlaceCandidate{}
	}
	s.opts.Logger.Debug("geocode lookup",
		logger.String("provider", s.opts.Provider),
		logger.Int("results", len(candidates)),
		logger.Duration("took", time.Since(start)),
	)
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Set(ctx, key, candidates); err != nil && !errors.Is(err, context.Canceled) {
			s.opts.Logger.Warn("geocode cache write failed", logger.Error(err))
		}
	}
	return candidates, nil
}
