package glogsink

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// Sink implements guard.Logger over glog. It satisfies the interface
// structurally, so this package does not need to import guard.
type Sink struct{}

// New returns a Sink. There is no configuration: verbosity is controlled
// the usual glog way, via the -v and -stderrthreshold flags.
func New() Sink { return Sink{} }

func (Sink) Debug(msg string, kv ...interface{}) {
	glog.V(1).Info(msg, fields(kv))
}

func (Sink) Info(msg string, kv ...interface{}) {
	glog.Info(msg, fields(kv))
}

func (Sink) Error(msg string, kv ...interface{}) {
	glog.Error(msg, fields(kv))
}

func fields(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(toString(kv[i]))
		b.WriteByte('=')
		b.WriteString(toString(kv[i+1]))
	}
	return b.String()
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}
