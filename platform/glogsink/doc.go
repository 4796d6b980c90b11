// Package glogsink adapts github.com/golang/glog to the guard.Logger
// interface, for programs that already use glog for everything else and
// want the guard's diagnostics to land in the same stream.
//
// Usage:
//
//	g := guard.New(p, opener,
//		guard.WithLogger(glogsink.New()),
//		guard.WithLogLevel(guard.LogDebug),
//	)
package glogsink
