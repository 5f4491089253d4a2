package epubcore

import (
	"context"

	"go.uber.org/zap"
)

// DefaultSplitThreshold is the implementer-recommended word-count threshold
// above which the chapter splitter divides a chapter into numbered parts.
const DefaultSplitThreshold = 3000

// LegacySplitThreshold is the historical threshold carried over from the
// source implementation this package's splitter semantics are based on.
const LegacySplitThreshold = 5000

// Option configures book parsing. Options compose via functional options,
// matching the style used elsewhere in the corpus for EPUB parser config.
type Option func(*options)

type options struct {
	ctx                       context.Context
	logger                    *zap.Logger
	splitEnabled              bool
	splitThreshold            int
	coverFallbackToFirstImage bool
}

func defaultOptions() *options {
	return &options{
		ctx:                       context.Background(),
		logger:                    zap.NewNop(),
		splitEnabled:              false,
		splitThreshold:            DefaultSplitThreshold,
		coverFallbackToFirstImage: true,
	}
}

// WithContext sets the context used to cancel archive reads. A cancelled
// context surfaces as an I/O error from the read in progress; no partial
// chapter tree is ever returned from Open/OpenRef.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithLogger sets the structured logger used for non-fatal, recoverable
// conditions (nav-parse fallback, NCX duplicate dedup, orphan-pass activity,
// cover-resolution failure in Open, font obfuscation). A fallback to the
// first image as cover is not logged. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSplitEnabled turns the chapter splitter on or off. Disabled by default.
func WithSplitEnabled(enabled bool) Option {
	return func(o *options) { o.splitEnabled = enabled }
}

// WithSplitThreshold sets the word-count threshold above which a chapter is
// split into numbered parts.
func WithSplitThreshold(words int) Option {
	return func(o *options) {
		if words > 0 {
			o.splitThreshold = words
		}
	}
}

// WithLegacySplitThreshold selects the historical 5000-word threshold
// instead of the current 3000-word default.
func WithLegacySplitThreshold() Option {
	return func(o *options) { o.splitThreshold = LegacySplitThreshold }
}

// WithCoverFallbackToFirstImage controls whether CoverLocator falls back to
// the first image in ContentIndex.Images when no cover metadata resolves.
// Defaults to true.
func WithCoverFallbackToFirstImage(enabled bool) Option {
	return func(o *options) { o.coverFallbackToFirstImage = enabled }
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}
	return o
}
