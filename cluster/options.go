package cluster

import (
	"fmt"
	"time"

	"github.com/go-sif/progressive/logging"
)

// WorkerOptions configures a Worker
type WorkerOptions struct {
	Port           int             // port for this Worker to bind to
	Host           string          // hostname for this Worker to bind to
	QueryCacheSize int             // the number of rebuilt queries to retain between Jobs
	Logger         *logging.Logger // Logger receives worker events
}

// ExecutorOptions configures a RemoteExecutor
type ExecutorOptions struct {
	Workers    []string        // [REQUIRED] host:port addresses of the Workers to dispatch to
	RPCTimeout time.Duration   // timeout for a single Job
	Logger     *logging.Logger // Logger receives dispatch events
}

func ensureDefaultWorkerOptionsValues(opts *WorkerOptions) {
	if opts.Port == 0 {
		opts.Port = 1643
	}
	if len(opts.Host) == 0 {
		opts.Host = "0.0.0.0"
	}
	if opts.QueryCacheSize <= 0 {
		opts.QueryCacheSize = 128
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
}

func ensureDefaultExecutorOptionsValues(opts *ExecutorOptions) {
	if opts.RPCTimeout == 0 {
		opts.RPCTimeout = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
}

// connectionString returns the connection string for this Worker
func (o *WorkerOptions) connectionString() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}
