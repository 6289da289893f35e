package rendertask

// Config holds the frame builder settings used by the task builders and the
// render task cache.
type Config struct {
	// GPUSupportsFastClears is set when clearing a target region is cheaper
	// than skipping the clear. Masks are then always cleared.
	GPUSupportsFastClears bool

	// CacheEviction is the policy used when the cache promotes a task into
	// the texture store. Defaults to EvictionEager.
	CacheEviction Eviction
}

// Option configures a Config.
//
// Example:
//
//	cfg := rendertask.NewConfig(
//	    rendertask.WithFastClears(true),
//	    rendertask.WithCacheEviction(rendertask.EvictionAuto),
//	)
type Option func(*Config)

// defaultConfig returns the default settings.
func defaultConfig() Config {
	return Config{
		GPUSupportsFastClears: false,
		CacheEviction:         EvictionEager,
	}
}

// NewConfig returns a Config with the given options applied over the
// defaults.
func NewConfig(opts ...Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithFastClears sets whether the GPU clears target regions cheaply.
func WithFastClears(enabled bool) Option {
	return func(c *Config) {
		c.GPUSupportsFastClears = enabled
	}
}

// WithCacheEviction sets the eviction policy for cached render tasks.
//
// EvictionEager drops any cached task not requested in the previous frame.
// EvictionAuto keeps them until the store needs the memory, which suits
// expensive content such as large box shadow blurs.
func WithCacheEviction(e Eviction) Option {
	return func(c *Config) {
		c.CacheEviction = e
	}
}
