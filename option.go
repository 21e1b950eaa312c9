package relstore

// Options configures an Engine. The zero value is not valid; use
// DefaultOptions or Open, which applies sane defaults before any Option
// overrides them.
type Options struct {
	// PoolSize is the number of frames in the buffer pool.
	PoolSize int

	// ReplacerK is the history depth (K) the LRU-K replacer uses to
	// distinguish pages with a real access pattern from ones seen only
	// once.
	ReplacerK int

	// Logger receives operational log events. Defaults to DiscardLogger.
	Logger Logger
}

// Option mutates Options during Open.
type Option func(*Options)

// DefaultOptions returns the options Open starts from before applying any
// Option arguments.
func DefaultOptions() *Options {
	return &Options{
		PoolSize:  256,
		ReplacerK: 2,
		Logger:    DiscardLogger{},
	}
}

// WithPoolSize overrides the buffer pool's frame count.
func WithPoolSize(n int) Option {
	return func(o *Options) { o.PoolSize = n }
}

// WithReplacerK overrides the LRU-K replacer's history depth.
func WithReplacerK(k int) Option {
	return func(o *Options) { o.ReplacerK = k }
}

// WithLogger overrides the engine's Logger.
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}
