package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cs-tungthanh/fcc-microservices/internal/logger"
	"github.com/cs-tungthanh/fcc-microservices/internal/metrics"
	"github.com/cs-tungthanh/fcc-microservices/internal/model"
	"github.com/cs-tungthanh/fcc-microservices/internal/repository"
	"github.com/cs-tungthanh/fcc-microservices/internal/validator"
)

var (
	ErrInvalidURL          = errors.New("invalid URL format")
	ErrURLNotFound         = errors.New("short URL not found")
	ErrAllocationExhausted = errors.New("could not allocate a short code")
)

// ShortURLStore persists URL mappings
type ShortURLStore interface {
	Create(ctx context.Context, u *model.ShortURL) error
	GetByShort(ctx context.Context, short int64) (*model.ShortURL, error)
	GetByOriginal(ctx context.Context, original string) (*model.ShortURL, error)
	NextShort(ctx context.Context) (int64, error)
}

// LookupCache fronts GetByShort. Misses return ok=false and no error.
type LookupCache interface {
	Get(ctx context.Context, short int64) (string, bool, error)
	Set(ctx context.Context, short int64, original string) error
}

// ShortURLService assigns integer short codes and resolves them
type ShortURLService struct {
	repo        ShortURLStore
	cache       LookupCache
	validator   *validator.URLValidator
	metrics     *metrics.Metrics
	log         *logger.Logger
	maxAttempts int
	now         func() time.Time
}

type ShortURLOption func(*ShortURLService)

func WithCache(c LookupCache) ShortURLOption {
	return func(s *ShortURLService) { s.cache = c }
}

func WithMetrics(m *metrics.Metrics) ShortURLOption {
	return func(s *ShortURLService) { s.metrics = m }
}

func WithLogger(l *logger.Logger) ShortURLOption {
	return func(s *ShortURLService) { s.log = l }
}

// WithMaxAttempts bounds how often allocation is retried after a conflict
func WithMaxAttempts(n int) ShortURLOption {
	return func(s *ShortURLService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewShortURLService creates a new service instance
func NewShortURLService(repo ShortURLStore, opts ...ShortURLOption) *ShortURLService {
	s := &ShortURLService{
		repo:        repo,
		validator:   validator.NewURLValidator(),
		log:         logger.Discard(),
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shorten returns the code already mapped to rawURL, or assigns max+1.
//
// Lookup, max read and insert are separate store calls. Concurrent callers
// can pick the same code or insert the same URL; the store rejects the
// loser with a unique violation and the loser starts over.
func (s *ShortURLService) Shorten(ctx context.Context, rawURL string) (*model.ShortenResponse, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !s.validator.Valid(rawURL) {
		return nil, ErrInvalidURL
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		existing, err := s.repo.GetByOriginal(ctx, rawURL)
		if err == nil {
			return &model.ShortenResponse{OriginalURL: rawURL, ShortURL: existing.Short}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up url: %w", err)
		}

		next, err := s.repo.NextShort(ctx)
		if err != nil {
			return nil, err
		}

		err = s.repo.Create(ctx, &model.ShortURL{
			Short:     next,
			Original:  rawURL,
			CreatedAt: s.now(),
		})
		if err == nil {
			if s.metrics != nil {
				s.metrics.CodesAllocated.Inc()
			}
			return &model.ShortenResponse{OriginalURL: rawURL, ShortURL: next}, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.AllocationConflict.Inc()
		}
		s.log.Debug("short code conflict, retrying", "short", next, "attempt", attempt)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrAllocationExhausted, s.maxAttempts)
}

// Resolve finds the original URL for a short code
func (s *ShortURLService) Resolve(ctx context.Context, code string) (string, error) {
	short, err := strconv.ParseInt(strings.TrimSpace(code), 10, 64)
	if err != nil || short < 1 {
		return "", ErrURLNotFound
	}

	if s.cache != nil {
		original, ok, err := s.cache.Get(ctx, short)
		switch {
		case err != nil:
			s.log.Warn("cache lookup failed", "short", short, "error", err.Error())
		case ok:
			s.countCache(true)
			return original, nil
		}
		s.countCache(false)
	}

	u, err := s.repo.GetByShort(ctx, short)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrURLNotFound
	}
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, short, u.Original); err != nil {
			s.log.Warn("cache store failed", "short", short, "error", err.Error())
		}
	}

	return u.Original, nil
}

func (s *ShortURLService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
}
