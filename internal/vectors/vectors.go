package vectors

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
)

// CosineSimilarity returns the cosine of the angle between a and b.
// Zero-magnitude vectors compare as 0 rather than dividing by zero.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, pkgerrors.ErrDimensionMismatch
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// ParseEmbedding normalizes the stored or transient representation of an
// embedding into a vector. It returns nil, never an error, on unusable input
// so corpus scans can filter malformed rows instead of aborting.
func ParseEmbedding(raw any) []float32 {
	switch v := raw.(type) {
	case nil:
		return nil
	case []float32:
		if len(v) == 0 {
			return nil
		}
		return v
	case []float64:
		return fromFloat64s(v)
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil
			}
			out = append(out, f)
		}
		return fromFloat64s(out)
	case datatypes.JSON:
		return parseEmbeddingString(string(v))
	case json.RawMessage:
		return parseEmbeddingString(string(v))
	case []byte:
		return parseEmbeddingString(string(v))
	case string:
		return parseEmbeddingString(v)
	default:
		return nil
	}
}

func parseEmbeddingString(raw string) []float32 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	var parsed []float64
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return fromFloat64s(parsed)
	}
	// Legacy form: bracketed or bare comma-delimited numbers.
	raw = strings.Trim(raw, "[]")
	parts := strings.Split(raw, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil
		}
		out = append(out, float32(f))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func fromFloat64s(in []float64) []float32 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}

// SerializeEmbedding stores a vector in the jsonb embedding column form
// ParseEmbedding reads back.
func SerializeEmbedding(vec []float32) datatypes.JSON {
	if len(vec) == 0 {
		return nil
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// RelevanceScore remaps cosine similarity [-1,1] onto a 0-100 percentage.
// Text embeddings rarely go strongly negative, so the linear remap spreads
// the practical similarity range usefully across the scale.
func RelevanceScore(similarity float64) int {
	score := int(math.Round(((similarity + 1) / 2) * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
