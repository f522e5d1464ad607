package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/go-sif/progressive"
	"github.com/stretchr/testify/require"
)

var _ progressive.RuntimeStatistics = &RunStatistics{}

func TestRunStatistics(t *testing.T) {
	rs := &RunStatistics{}
	rs.EndPartition(time.Now(), 10, false)
	require.Equal(t, int64(0), rs.GetNumPartitionsProcessed())
	require.Equal(t, time.Duration(0), rs.GetRuntime())

	rs.Start()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := rs.StartPartition()
			time.Sleep(time.Millisecond)
			rs.EndPartition(start, 10, i%4 == 0)
		}(i)
	}
	wg.Wait()
	require.Equal(t, int64(15), rs.GetNumPartitionsProcessed())
	require.Equal(t, int64(5), rs.GetNumPartitionsFailed())
	require.Equal(t, int64(150), rs.GetNumRowsProcessed())
	require.True(t, rs.GetCurrentPartitionProcessingTime() >= time.Millisecond)

	rs.Finish()
	runtime := rs.GetRuntime()
	time.Sleep(time.Millisecond)
	require.Equal(t, runtime, rs.GetRuntime())
	require.False(t, rs.GetStartTime().IsZero())
}
