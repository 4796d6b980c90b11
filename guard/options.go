package guard

import (
	"time"

	"github.com/Denis-69/CrashRollbackGuard/platform"
)

// SuspiciousPredicate decides whether a reset reason should be treated as
// suspicious (i.e. evidence of a crash). Supplying one overrides the
// default reason policy entirely.
type SuspiciousPredicate func(platform.ResetReason) bool

// options holds a Guard's configuration. It is unexported, mirroring the
// teacher's bootloader.Config; callers only ever see Option values.
type options struct {
	namespace Label

	failLimit  uint32
	stableTime time.Duration

	autoSavePrevSlot bool

	logLevel LogLevel
	logger   Logger

	fallbackToFactory bool
	factoryLabel      Label

	maxRollbackAttempts uint8

	swResetCountsAsCrash  bool
	brownoutCountsAsCrash bool

	suspiciousPredicate SuspiciousPredicate

	featurePendingVerify   bool
	featureStableTick      bool
	featureFactoryFallback bool
}

func defaultOptions() options {
	ns, _ := NewLabel("crg")
	factory, _ := NewLabel("factory")
	return options{
		namespace:              ns,
		failLimit:              3,
		stableTime:             60 * time.Second,
		autoSavePrevSlot:       false,
		logLevel:               LogInfo,
		logger:                 noopLogger{},
		fallbackToFactory:      false,
		factoryLabel:           factory,
		maxRollbackAttempts:    1,
		swResetCountsAsCrash:   false,
		brownoutCountsAsCrash:  false,
		featurePendingVerify:   true,
		featureStableTick:      true,
		featureFactoryFallback: true,
	}
}

// Option is a functional option for configuring a Guard, matching the
// teacher's bootloader.Option pattern.
type Option func(*options)

// WithNamespace sets the durable-storage namespace (at most 15 bytes).
// Invalid namespaces are silently ignored, matching the original's
// fallback-to-default behavior when an invalid namespace is supplied.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if l, ok := NewLabel(ns); ok && len(ns) < LabelMaxLen {
			o.namespace = l
		}
	}
}

// WithFailLimit sets the number of consecutive suspicious boots tolerated
// before a rollback is attempted. 0 disables rollback entirely.
func WithFailLimit(n uint32) Option {
	return func(o *options) { o.failLimit = n }
}

// WithStableTime sets how long the running image must run before LoopTick
// auto-confirms it healthy. 0 disables the auto-confirm.
func WithStableTime(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.stableTime = d
		}
	}
}

// WithAutoSavePrevSlot enables automatically saving the running label as
// "previous" on first boot if no previous slot is recorded yet.
func WithAutoSavePrevSlot(enabled bool) Option {
	return func(o *options) { o.autoSavePrevSlot = enabled }
}

// WithLogger sets the logging sink. The default discards everything.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLogLevel sets the minimum level a configured Logger receives.
func WithLogLevel(level LogLevel) Option {
	return func(o *options) { o.logLevel = level }
}

// WithFactoryFallback enables falling back to the factory partition when
// no usable previous slot exists, and sets its label.
func WithFactoryFallback(enabled bool, factoryLabel string) Option {
	return func(o *options) {
		o.fallbackToFactory = enabled
		if l, ok := NewLabel(factoryLabel); ok {
			o.factoryLabel = l
		}
	}
}

// WithMaxRollbackAttempts caps consecutive rollbacks tolerated before the
// guard tries factory fallback instead of ping-ponging forever. 0 means no
// limit.
func WithMaxRollbackAttempts(n uint8) Option {
	return func(o *options) { o.maxRollbackAttempts = n }
}

// WithSWResetCountsAsCrash treats a software-initiated reset as suspicious
// under the default reason policy.
func WithSWResetCountsAsCrash(enabled bool) Option {
	return func(o *options) { o.swResetCountsAsCrash = enabled }
}

// WithBrownoutCountsAsCrash treats a brownout reset as suspicious under the
// default reason policy.
func WithBrownoutCountsAsCrash(enabled bool) Option {
	return func(o *options) { o.brownoutCountsAsCrash = enabled }
}

// WithSuspiciousPredicate overrides the default reset-reason policy
// entirely.
func WithSuspiciousPredicate(pred SuspiciousPredicate) Option {
	return func(o *options) { o.suspiciousPredicate = pred }
}

// WithPendingVerify toggles whether BeginEarly consults the platform's OTA
// image state at all. Disabling it is the Go equivalent of building with
// CRG_FEATURE_PENDING_VERIFY_FIX=0: the related code paths collapse to
// unconditional skips with no residual state.
func WithPendingVerify(enabled bool) Option {
	return func(o *options) { o.featurePendingVerify = enabled }
}

// WithStableTick toggles whether LoopTick does anything. Disabling it is
// the equivalent of CRG_FEATURE_STABLE_TICK=0.
func WithStableTick(enabled bool) Option {
	return func(o *options) { o.featureStableTick = enabled }
}

// WithFactoryFallbackFeature toggles whether the factory-fallback code path
// exists at all, independent of WithFactoryFallback's enabled flag. This is
// the equivalent of CRG_FEATURE_FACTORY_FALLBACK=0.
func WithFactoryFallbackFeature(enabled bool) Option {
	return func(o *options) { o.featureFactoryFallback = enabled }
}
