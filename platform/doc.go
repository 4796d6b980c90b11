// Package platform defines the contract between the crash-rollback guard and
// the hardware/bootloader primitives it depends on but does not implement.
//
// # Overview
//
// The guard never touches flash, a watchdog register, or a reset-cause
// register directly. Instead it is handed a Platform implementation, the way
// github.com/moffa90/go-cyacd's bootloader.Programmer is handed an
// io.ReadWriter instead of opening a USB device itself:
//
//	p := platform.Platform(myBoardImplementation{})
//	g := guard.New(p, myOpener, guard.WithFailLimit(3))
//
// # Implementations
//
//   - platform/sim provides an in-memory simulated board: a fake partition
//     table, fake OTA states, a settable reset reason and a settable clock.
//     It is used by the guard's own tests.
//   - A real target (ESP-IDF via cgo, u-boot environment, UEFI variables,
//     whatever the device actually boots through) implements Platform by
//     wrapping that target's own partition/reset/OTA primitives.
//
// Restart is documented as never returning on a real target. Simulated
// implementations may return to the caller so that tests can observe the
// Decision a rollback attempt would have produced.
package platform
