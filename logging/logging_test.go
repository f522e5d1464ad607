package logging

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, DebugLevel, ParseLogLevel("debug"))
	require.Equal(t, WarnLevel, ParseLogLevel(" WARN "))
	require.Equal(t, TraceLevel, ParseLogLevel("trace"))
	require.Equal(t, InfoLevel, ParseLogLevel("verbose"))
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("scheduler", WarnLevel).WithOutput(log.New(&buf, "", 0))
	logger.Infof("dropped %d", 1)
	require.Equal(t, 0, buf.Len())
	logger.Errorf("partition %d failed", 3)
	require.Equal(t, "scheduler: level [ERROR]: partition 3 failed\n", buf.String())

	buf.Reset()
	logger.Named("worker").Warnf("slow")
	require.Equal(t, "scheduler.worker: level [WARN]: slow\n", buf.String())

	logger.SetLevel(TraceLevel)
	require.True(t, logger.Enabled(DebugLevel))
	require.False(t, Nop().Enabled(FatalLevel))
}
