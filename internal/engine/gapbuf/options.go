package gapbuf

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithMinGap sets the gap size used for new buffers and as the growth unit.
func WithMinGap(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.minGap = n
		}
	}
}

// WithCacheSize sets the number of line-offset cache slots.
func WithCacheSize(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.cacheSize = n
		}
	}
}
