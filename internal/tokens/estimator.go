// Package tokens estimates how many model tokens a span of text costs.
//
// The estimate is only used to decide chunk boundaries, so it does not have to
// match billing exactly. Known OpenAI model families are counted with their BPE
// encoding; everything else falls back to a conservative heuristic.
package tokens

import (
	"math"
	"strings"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// Estimator counts tokens per model, caching the encoding lookup for each model name.
type Estimator struct {
	exact  bool
	logger *zap.Logger
	encs   map[string]*tiktoken.Tiktoken
}

// NewEstimator returns an Estimator. When exact is false the BPE encodings are
// never loaded and the heuristic is always used (useful offline).
func NewEstimator(exact bool, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		exact:  exact,
		logger: logger,
		encs:   make(map[string]*tiktoken.Tiktoken),
	}
}

// Estimate returns the estimated token count of text for model.
func (e *Estimator) Estimate(text, model string) int {
	if text == "" {
		return 0
	}
	if enc := e.encoding(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Heuristic(text)
}

func (e *Estimator) encoding(model string) *tiktoken.Tiktoken {
	if !e.exact || model == "" {
		return nil
	}
	if enc, ok := e.encs[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(bareModelName(model))
	if err != nil {
		e.logger.Debug("no exact tokenizer for model, using heuristic",
			zap.String("model", model), zap.Error(err))
		enc = nil
	}
	// nil is cached too so unknown models are looked up once.
	e.encs[model] = enc
	return enc
}

// bareModelName strips router prefixes such as "openai/" from model names.
func bareModelName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}

// Heuristic estimates tokens without a tokenizer. It takes the larger of
// ~4 characters per token and ~0.75 words per token so it errs on the high side.
func Heuristic(text string) int {
	if text == "" {
		return 0
	}
	byRunes := int(math.Ceil(float64(utf8.RuneCountInString(text)) / 4))
	byWords := int(math.Ceil(float64(len(strings.Fields(text))) * 4 / 3))
	n := byRunes
	if byWords > n {
		n = byWords
	}
	if n == 0 {
		return 1
	}
	return n
}

// Truncate cuts text to roughly fit within limit tokens using the heuristic.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if Heuristic(text) <= limit {
		return text
	}
	runes := []rune(text)
	charLimit := limit * 4
	if charLimit > len(runes) {
		charLimit = len(runes)
	}
	out := string(runes[:charLimit])
	for Heuristic(out) > limit && charLimit > 0 {
		charLimit--
		out = string(runes[:charLimit])
	}
	return out
}
