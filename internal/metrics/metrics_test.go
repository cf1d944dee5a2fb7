package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	observer, err := NewObserver(reg)
	require.NoError(t, err)

	observer.RecordMigrated(120*time.Millisecond, 2, 4096)
	observer.RecordMigrated(80*time.Millisecond, 1, 1024)
	observer.RecordFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(observer.recordsMigrated))
	assert.Equal(t, 3.0, testutil.ToFloat64(observer.itemsUploaded))
	assert.Equal(t, 5120.0, testutil.ToFloat64(observer.bytesUploaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(observer.recordFailures))
}

func TestObserverToleratesDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewObserver(reg)
	require.NoError(t, err)

	_, err = NewObserver(reg)
	require.NoError(t, err)
}

func TestObserverNilReceiver(t *testing.T) {
	var observer *Observer
	observer.RecordMigrated(time.Second, 1, 1)
	observer.RecordFailure()
}
