package taxonomy

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FetchFunc retrieves the raw tree from its source.
type FetchFunc func(ctx context.Context) (Tree, error)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used for fetch diagnostics.
func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithValidation rejects fetched trees that fail Tree.Validate.
func WithValidation(enabled bool) ServiceOption {
	return func(s *Service) {
		s.validate = enabled
	}
}

// Service memoizes the taxonomy for the process lifetime. The first
// successful fetch is cached; failures are not, so a later call retries.
// Concurrent callers share one in-flight fetch.
type Service struct {
	fetch    FetchFunc
	logger   *zap.Logger
	validate bool

	group singleflight.Group

	mu    sync.RWMutex
	index *Index
}

// NewService constructs a Service around fetch.
func NewService(fetch FetchFunc, options ...ServiceOption) *Service {
	s := &Service{
		fetch:  fetch,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Index returns the memoized index, fetching the tree on first use.
func (s *Service) Index(ctx context.Context) (*Index, error) {
	if cached := s.cached(); cached != nil {
		return cached, nil
	}
	if s.fetch == nil {
		return nil, ErrNoFetcher
	}

	result, err, shared := s.group.Do("tree", func() (any, error) {
		if cached := s.cached(); cached != nil {
			return cached, nil
		}
		tree, err := s.fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("taxonomy: fetch: %w", err)
		}
		if s.validate {
			if err := tree.Validate(); err != nil {
				return nil, err
			}
		}
		index := NewIndex(tree)
		s.mu.Lock()
		s.index = index
		s.mu.Unlock()
		s.logger.Debug("taxonomy fetched", zap.Int("leaves", index.Len()))
		return index, nil
	})
	if err != nil {
		s.logger.Warn("taxonomy fetch failed", zap.Error(err), zap.Bool("shared", shared))
		return nil, err
	}
	return result.(*Index), nil
}

// Tree is a convenience wrapper around Index.
func (s *Service) Tree(ctx context.Context) (Tree, error) {
	index, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	return index.Tree(), nil
}

// Reset drops the memoized tree.
func (s *Service) Reset() {
	s.mu.Lock()
	s.index = nil
	s.mu.Unlock()
}

func (s *Service) cached() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}
