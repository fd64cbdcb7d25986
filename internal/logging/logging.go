// Package logging configures klog for the server and CLI.
package logging

import (
	"flag"
	"io"
	"os"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
	"k8s.io/klog/v2"
)

type Options struct {
	// File, when set, receives all output through a rotating writer.
	File      string
	Verbosity int
}

// Setup applies opts to klog and returns the writer log output goes to,
// plus a function that flushes and closes it.
func Setup(opts Options) (io.Writer, func()) {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	_ = fs.Set("v", strconv.Itoa(opts.Verbosity))

	if opts.File == "" {
		_ = fs.Set("logtostderr", "true")
		return os.Stderr, klog.Flush
	}

	logFile := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	_ = fs.Set("logtostderr", "false")
	_ = fs.Set("alsologtostderr", "false")
	klog.SetOutput(logFile)
	return logFile, func() {
		klog.Flush()
		_ = logFile.Close()
	}
}
