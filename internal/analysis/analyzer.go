// Package analysis turns a free-text mood description into emotional
// coordinates by asking an external chat-completion model, and absorbs every
// upstream failure into a neutral default.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/justestif/go-moodbeats/internal/mood"
)

// Input limits, in characters.
const (
	MinTextLength    = 5
	MaxTextLength    = 1000
	MaxContextLength = 100
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 30 * time.Second

// Completer sends one system+user prompt pair to a chat model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Analyzer orchestrates prompt building, the upstream call, parsing and fallback.
type Analyzer struct {
	completer    Completer
	cache        Cache
	logger       *zap.Logger
	timeout      time.Duration
	systemPrompt string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTimeout sets the upstream call timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithCache caches successful results.
func WithCache(c Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(p string) Option {
	return func(a *Analyzer) {
		if strings.TrimSpace(p) != "" {
			a.systemPrompt = p
		}
	}
}

// NewAnalyzer creates an Analyzer backed by completer.
func NewAnalyzer(completer Completer, opts ...Option) *Analyzer {
	a := &Analyzer{
		completer:    completer,
		logger:       zap.NewNop(),
		timeout:      DefaultTimeout,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the emotional analysis of text.
//
// Only invalid input produces an error (*mood.InvalidArgumentError). Upstream
// failures, timeouts and unparseable replies yield Fallback(). The upstream
// call is detached from ctx cancellation and bounded by the configured timeout.
func (a *Analyzer) Analyze(ctx context.Context, text, moodContext string) (*Result, error) {
	text = strings.TrimSpace(text)
	moodContext = strings.TrimSpace(moodContext)
	if err := ValidateInput(text, moodContext); err != nil {
		return nil, err
	}

	key := cacheKey(text, moodContext)
	if a.cache != nil {
		cached, err := a.cache.Get(ctx, key)
		switch {
		case err == nil:
			a.logger.Debug("analysis cache hit", zap.String("key", key))
			return cached, nil
		case !errors.Is(err, ErrCacheMiss):
			a.logger.Warn("reading analysis cache", zap.Error(err))
		}
	}

	raw, err := a.complete(ctx, BuildPrompt(text, moodContext))
	if err != nil {
		a.logger.Warn("mood analysis failed, using fallback", zap.Error(err))
		return Fallback(), nil
	}

	res, err := Parse(raw)
	if err != nil {
		a.logger.Warn("unparseable analysis, using fallback",
			zap.Error(err),
			zap.Int("response_len", len(raw)),
		)
		return Fallback(), nil
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, res); err != nil {
			a.logger.Warn("writing analysis cache", zap.Error(err))
		}
	}

	a.logger.Info("mood analyzed",
		zap.Strings("emotions", res.Emotions),
		zap.String("summary", res.Summary()),
	)
	return res, nil
}

type completion struct {
	text string
	err  error
}

// complete runs the upstream call on its own goroutine so a completer that
// ignores its context still cannot hold the caller past the timeout.
func (a *Analyzer) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		text, err := a.completer.Complete(callCtx, a.systemPrompt, prompt)
		done <- completion{text: text, err: err}
	}()

	select {
	case c := <-done:
		return c.text, c.err
	case <-callCtx.Done():
		return "", callCtx.Err()
	}
}

// ValidateInput checks the trimmed description and context lengths.
func ValidateInput(text, moodContext string) error {
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return mood.InvalidArgument("mood description", "must not be empty")
	case n < MinTextLength:
		return mood.InvalidArgument("mood description", "must be at least 5 characters")
	case n > MaxTextLength:
		return mood.InvalidArgument("mood description", "must be at most 1000 characters")
	}
	if utf8.RuneCountInString(moodContext) > MaxContextLength {
		return mood.InvalidArgument("context", "must be at most 100 characters")
	}
	return nil
}

func cacheKey(text, moodContext string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + moodContext))
	return hex.EncodeToString(sum[:])
}
