package embedding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
)

type fakeProvider struct {
	mu         sync.Mutex
	inFlight   int32
	maxSeen    int32
	failInputs map[string]bool
	err        error
}

func (f *fakeProvider) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	f.mu.Lock()
	if cur > f.maxSeen {
		f.maxSeen = cur
	}
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		if f.failInputs[in] {
			return nil, errors.New("simulated failure")
		}
		out[i] = []float32{float32(len(in)), 1, 2}
	}
	return out, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestEmbedTextTooShort(t *testing.T) {
	s := NewService(testLogger(t), &fakeProvider{})
	for _, text := range []string{"", "short", "   padded  "} {
		if _, err := s.Embed(context.Background(), text); !errors.Is(err, pkgerrors.ErrTextTooShort) {
			t.Fatalf("Embed(%q) error = %v, want ErrTextTooShort", text, err)
		}
	}
}

func TestEmbedProviderFailureIsUnavailable(t *testing.T) {
	s := NewService(testLogger(t), &fakeProvider{err: errors.New("rate limited")})
	_, err := s.Embed(context.Background(), "a text long enough to embed")
	if !errors.Is(err, pkgerrors.ErrEmbeddingUnavailable) {
		t.Fatalf("Embed error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestEmbedSuccess(t *testing.T) {
	s := NewService(testLogger(t), &fakeProvider{})
	vec, err := s.Embed(context.Background(), "a text long enough to embed")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("vector length = %d, want 3", len(vec))
	}
}

func TestEmbedManyPartialFailure(t *testing.T) {
	provider := &fakeProvider{failInputs: map[string]bool{"failing text for slot two": true}}
	s := NewService(testLogger(t), provider)

	texts := []string{
		"first text long enough",
		"failing text for slot two",
		"third text long enough",
		"no", // too short
	}
	out := s.EmbedMany(context.Background(), texts, 2)
	if len(out) != len(texts) {
		t.Fatalf("output length = %d, want %d", len(out), len(texts))
	}
	if out[0] == nil || out[2] == nil {
		t.Fatal("healthy slots should have vectors")
	}
	if out[1] != nil {
		t.Fatal("failed slot should be nil")
	}
	if out[3] != nil {
		t.Fatal("too-short slot should be nil")
	}
}

func TestEmbedManyBoundsConcurrency(t *testing.T) {
	provider := &fakeProvider{}
	s := NewService(testLogger(t), provider)

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = strings.Repeat("text ", 5)
	}
	out := s.EmbedMany(context.Background(), texts, 3)
	for i, vec := range out {
		if vec == nil {
			t.Fatalf("slot %d unexpectedly nil", i)
		}
	}
	if provider.maxSeen > 3 {
		t.Fatalf("max concurrent calls = %d, want <= 3", provider.maxSeen)
	}
}

func TestEmbedManyEmptyInput(t *testing.T) {
	s := NewService(testLogger(t), &fakeProvider{})
	if out := s.EmbedMany(context.Background(), nil, 5); len(out) != 0 {
		t.Fatalf("EmbedMany(nil) length = %d, want 0", len(out))
	}
}
