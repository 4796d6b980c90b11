// Package sim provides an in-memory simulated platform.Platform for tests
// and examples.
//
// It plays the same role the teacher's mock io.ReadWriter devices play in
// go-cyacd's examples and tests: a drop-in stand-in for real hardware that
// lets the rest of the module be exercised without a board attached.
//
//	p := sim.New(sim.WithPartitions("app0", "app1", "factory"))
//	p.SetRunning("app0")
//	p.SetResetReason(platform.ResetWatchdogTask)
//	g := guard.New(p, myOpener, guard.WithFailLimit(3))
//	g.BeginEarly(context.Background())
package sim
