package deviceicon

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vm "github.com/VictoriaMetrics/metrics"
	"golang.org/x/sync/singleflight"
)

// Provider returns icons for audio devices. Resolved icons are cached and
// shared between devices with the same icon-path specifier.
type Provider struct {
	cache    ResourceCache[*Icon]
	resolver IconResolver
	logger   *slog.Logger

	// resolving collapses concurrent resolutions of the same key.
	resolving singleflight.Group

	metrics  *vm.Set
	failures *vm.Counter
}

// New returns a new provider with its own icon cache.
func New(opts Options) (*Provider, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts = opts.withDefaults()

	cache := NewSlidingCache(CacheOptions[*Icon]{
		Expiration:    opts.Expiration,
		SweepInterval: opts.SweepInterval,
		Capacity:      opts.Capacity,
		Clock:         opts.Clock,
		Metrics:       opts.Metrics,
	})
	resolver := NewResolver(opts.Extractor, opts.LargeSize, opts.SmallSize)

	return NewWithCache(cache, resolver, opts.Logger, opts.Metrics), nil
}

// NewWithCache returns a provider that uses the given cache and resolver.
// A nil logger or metrics set is replaced by the default.
func NewWithCache(cache ResourceCache[*Icon], resolver IconResolver, logger *slog.Logger, metrics *vm.Set) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = vm.NewSet()
	}
	return &Provider{
		cache:    cache,
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
		failures: metrics.GetOrCreateCounter(`deviceicon_resolve_failures_total`),
	}
}

// GetIcon returns the icon of the device. If the icon cannot be resolved,
// the default microphone or speakers icon is returned, depending on the data
// flow of the device. The returned icon is owned by the cache and must not
// be disposed by the caller. The cache disposes it once it expires or is
// evicted, even while a caller still holds it; from then on Image returns
// nil and the encoders return an error, so callers that keep the handle
// must nil-check Image.
//
// GetIcon panics if the device neither captures nor renders audio and its
// icon cannot be resolved.
func (p *Provider) GetIcon(device Device, large bool) *Icon {
	specifier := device.IconPath()
	key := MakeKey(specifier, large)

	if icon, ok := p.cache.Lookup(key); ok {
		return icon
	}

	v, err, _ := p.resolving.Do(key, func() (interface{}, error) {
		// A concurrent caller may have stored the icon in the meantime.
		if icon, ok := p.cache.Lookup(key); ok {
			return icon, nil
		}

		icon, err := p.resolver.Resolve(specifier, large)
		if err != nil {
			return nil, err
		}
		p.cache.Insert(key, icon)
		return icon, nil
	})
	if err == nil {
		return v.(*Icon) //nolint:forcetypeassert
	}

	p.failures.Inc()
	p.logger.Error("can't extract icon", "path", specifier, "err", err)
	return fallbackIcon(device.DataFlow())
}

func fallbackIcon(flow DataFlow) *Icon {
	switch flow {
	case Capture:
		return DefaultMicrophone()
	case Render:
		return DefaultSpeakers()
	default:
		panic(fmt.Errorf("%w: %s", ErrInvalidDirectionality, flow))
	}
}

// Start starts background maintenance of the cache, if the cache supports it.
func (p *Provider) Start(ctx context.Context) {
	if starter, ok := p.cache.(interface{ Start(context.Context) }); ok {
		starter.Start(ctx)
	}
}

// Close releases all cached icons, if the cache supports it.
func (p *Provider) Close() {
	if closer, ok := p.cache.(interface{ Close() }); ok {
		closer.Close()
	}
}

// WritePrometheus writes the provider and cache metrics in Prometheus text
// format to w.
func (p *Provider) WritePrometheus(w io.Writer) {
	p.metrics.WritePrometheus(w)
}
