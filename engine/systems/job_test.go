package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/anima-content/engine/core"
	"github.com/spaghettifunk/anima-content/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)

	var completed, failed, finished atomic.Int32
	var mu sync.Mutex
	var results []interface{}

	for i := 0; i < 6; i++ {
		err := js.Submit(metadata.JobTask{
			InputParams: i,
			OnStart: func(params interface{}, out chan<- interface{}) error {
				n := params.(int)
				if n%3 == 0 {
					return errors.New("multiple of three")
				}
				out <- n * 10
				return nil
			},
			OnComplete: func(in <-chan interface{}) {
				completed.Add(1)
				mu.Lock()
				results = append(results, <-in)
				mu.Unlock()
			},
			OnFailure: func(<-chan interface{}) {
				failed.Add(1)
			},
			OnCompletionCallback: func() {
				finished.Add(1)
			},
		})
		require.NoError(t, err)
	}
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(4), completed.Load())
	assert.Equal(t, int32(2), failed.Load())
	assert.Equal(t, int32(6), finished.Load())
	assert.ElementsMatch(t, []interface{}{10, 20, 40, 50}, results)
}

func TestSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	err = js.Submit(metadata.JobTask{OnStart: func(interface{}, chan<- interface{}) error { return nil }})
	assert.ErrorIs(t, err, ErrJobSystemClosed)
	assert.ErrorIs(t, js.Submit(metadata.JobTask{}), core.ErrNilArgument)
}
