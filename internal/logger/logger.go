// Package logger is the ambient logging surface used throughout rfbencoder.
// It wraps glog so call sites look the same whether they log a routine
// connection event or a fatal invariant violation.
package logger

import "github.com/golang/glog"

func Info(args ...interface{}) {
	glog.InfoDepth(1, args...)
}

func Infof(format string, args ...interface{}) {
	glog.Infof(format, args...)
}

func Warn(args ...interface{}) {
	glog.WarningDepth(1, args...)
}

func Warnf(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}

func Error(args ...interface{}) {
	glog.ErrorDepth(1, args...)
}

func Errorf(format string, args ...interface{}) {
	glog.Errorf(format, args...)
}

func Debug(args ...interface{}) {
	glog.V(1).InfoDepth(1, args...)
}

func Debugf(format string, args ...interface{}) {
	if glog.V(1) {
		glog.Infof(format, args...)
	}
}

// Fatalf logs at fatal severity and terminates the process. It is reserved
// for InternalInvariant violations: queue bookkeeping that disagrees with
// itself is a bug, not a condition to recover from.
func Fatalf(format string, args ...interface{}) {
	glog.Fatalf(format, args...)
}
