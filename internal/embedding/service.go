package embedding

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
)

// MinTextLength is the provider-side minimum; anything shorter embeds to
// noise.
const MinTextLength = 10

// DefaultConcurrency is the admission-control width against the provider.
const DefaultConcurrency = 5

// Provider is the transport that turns text into vectors. openai.Client
// satisfies it.
type Provider interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type Service struct {
	log      *logger.Logger
	provider Provider
}

func NewService(baseLog *logger.Logger, provider Provider) *Service {
	return &Service{
		log:      baseLog.With("service", "EmbeddingService"),
		provider: provider,
	}
}

// Embed converts one text into a vector. ErrTextTooShort and
// ErrEmbeddingUnavailable are the only error kinds returned; callers route
// the latter to keyword fallback.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinTextLength {
		return nil, pkgerrors.ErrTextTooShort
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", pkgerrors.ErrEmbeddingUnavailable)
	}

	vecs, err := s.provider.Embed(ctx, []string{trimmed})
	if err != nil {
		s.log.Warn("Embedding generation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrEmbeddingUnavailable, err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		s.log.Warn("Embedding provider returned malformed payload", "vectors", len(vecs))
		return nil, fmt.Errorf("%w: malformed embedding payload", pkgerrors.ErrEmbeddingUnavailable)
	}
	return vecs[0], nil
}

// EmbedMany embeds texts under a bounded concurrency window. Individual
// failures leave a nil slot; the batch itself never fails. Partial success is
// the expected outcome under provider instability.
func (s *Service) EmbedMany(ctx context.Context, texts []string, maxConcurrent int) [][]float32 {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out
	}
	if maxConcurrent < 1 {
		maxConcurrent = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := s.Embed(gctx, text)
			if err != nil {
				s.log.Debug("Batch embedding slot failed", "index", i, "error", err)
				return nil
			}
			out[i] = vec
			return nil
		})
	}

	// Workers never return errors, so Wait only blocks for completion.
	_ = g.Wait()
	return out
}
