// Package guard implements a crash-loop detector and A/B firmware rollback
// guard for a device that boots from one of several flashable application
// partitions plus an optional factory partition.
//
// # Overview
//
// On every boot, call BeginEarly as early as possible in startup:
//
//	g := guard.New(myPlatform, myOpener, guard.WithFailLimit(3), guard.WithStableTime(time.Minute))
//	switch g.BeginEarly(context.Background()) {
//	case guard.None:
//	    // proceed with normal startup
//	case guard.RollbackToPrev, guard.RollbackToFactory:
//	    // unreachable on a real platform.Platform: BeginEarly already
//	    // called Restart() before returning this value.
//	default:
//	    // a skip/failure outcome; the device is booting into the same
//	    // (possibly unhealthy) slot again
//	}
//
// Once the application considers itself alive (after connecting to a
// network, completing self-tests, whatever "alive" means for the caller),
// call MarkHealthyNow to clear the failure counters and confirm the running
// image:
//
//	g.MarkHealthyNow(context.Background())
//
// Applications that have no explicit "alive" signal can instead rely on a
// stable-time auto-confirm by calling LoopTick periodically:
//
//	for {
//	    g.LoopTick(context.Background())
//	    // ... normal work ...
//	}
//
// # Durable state
//
// All durable state is kept in a namespaced nvs.Store, scoped so that a
// power cut mid-write always leaves the guard able to detect and repair the
// interrupted write on the next boot; see the package-level doc comment on
// package nvs, and counters.go/pending.go in this package, for the exact
// write-ordering disciplines that make that true.
//
// # Concurrency
//
// A Guard is not safe for concurrent use. It is meant to be driven entirely
// from the single boot-path goroutine: BeginEarly once at startup, then
// MarkHealthyNow/LoopTick from the same goroutine thereafter.
package guard
