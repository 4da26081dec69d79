package deviceicon

import (
	"errors"
	"log/slog"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/bluele/gcache"
	"github.com/hashicorp/go-multierror"
)

// Defaults.
const (
	DefaultExpiration    = 5 * time.Minute
	DefaultSweepInterval = 30 * time.Second
	DefaultCapacity      = 256
	DefaultLargeSize     = 32
	DefaultSmallSize     = 16
)

// Options holds options for a Provider and its cache.
// The zero value is valid and uses the defaults.
type Options struct {
	// Expiration is the sliding expiration window of cached icons. Every
	// access re-arms the window.
	Expiration time.Duration

	// SweepInterval defines how often expired icons are evicted in the
	// background. Expired icons are also evicted when they are accessed.
	SweepInterval time.Duration

	// Capacity is the maximum amount of cached icons. The least recently
	// used icon is evicted when the capacity is exceeded.
	Capacity int

	// LargeSize and SmallSize are the preferred icon edge lengths in pixels.
	LargeSize int
	SmallSize int

	// Clock is used for expiration. Tests may supply gcache.NewFakeClock().
	Clock gcache.Clock

	// Logger receives resolution failures.
	Logger *slog.Logger

	// Extractor extracts icons from container files.
	// Defaults to a PEExtractor.
	Extractor IconExtractor

	// Metrics is the set the cache and provider counters are registered in.
	Metrics *vm.Set
}

// Validate checks the options and returns all problems at once.
func (o *Options) Validate() error {
	var result *multierror.Error
	if o.Expiration < 0 {
		result = multierror.Append(result, errors.New("expiration must not be negative"))
	}
	if o.SweepInterval < 0 {
		result = multierror.Append(result, errors.New("sweep interval must not be negative"))
	}
	if o.Capacity < 0 {
		result = multierror.Append(result, errors.New("capacity must not be negative"))
	}
	if o.LargeSize < 0 || o.SmallSize < 0 {
		result = multierror.Append(result, errors.New("icon sizes must not be negative"))
	}
	if o.LargeSize > 0 && o.SmallSize > 0 && o.SmallSize > o.LargeSize {
		result = multierror.Append(result, errors.New("small icon size must not exceed large icon size"))
	}
	return result.ErrorOrNil()
}

func (o Options) withDefaults() Options {
	if o.Expiration == 0 {
		o.Expiration = DefaultExpiration
	}
	if o.SweepInterval == 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Capacity == 0 {
		o.Capacity = DefaultCapacity
	}
	if o.LargeSize == 0 {
		o.LargeSize = DefaultLargeSize
	}
	if o.SmallSize == 0 {
		o.SmallSize = DefaultSmallSize
	}
	if o.Clock == nil {
		o.Clock = gcache.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Extractor == nil {
		o.Extractor = &PEExtractor{
			LargeSize: o.LargeSize,
			SmallSize: o.SmallSize,
		}
	}
	if o.Metrics == nil {
		o.Metrics = vm.NewSet()
	}
	return o
}
