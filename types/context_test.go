package types

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioContextStore(t *testing.T) {
	sc := NewScenarioContext("checkout", "run-1", log.NewLogger(log.DiscardHandler()))

	_, ok := sc.Get("token")
	assert.False(t, ok)
	assert.Nil(t, sc.Value("token"))

	sc.Set("token", "abc123")
	v, ok := sc.Get("token")
	require.True(t, ok)
	assert.Equal(t, "abc123", v)
	assert.Equal(t, "abc123", sc.Value("token"))

	sc.Set("token", "def456")
	assert.Equal(t, "def456", sc.Value("token"), "Set replaces existing entries")
}

func TestScenarioContextConcurrentWrites(t *testing.T) {
	// Abandoned timed-out attempts may write while the scenario proceeds,
	// so the store must tolerate concurrent access.
	sc := NewScenarioContext("checkout", "run-1", log.NewLogger(log.DiscardHandler()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sc.Set(fmt.Sprintf("key-%d", i), i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, sc.Keys(), 50)
}
