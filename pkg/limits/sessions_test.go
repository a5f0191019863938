package limits

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionLimiter(t *testing.T) {
	l := NewSessionLimiter(2)

	assert.True(t, l.Acquire())
	assert.True(t, l.Acquire())
	assert.False(t, l.Acquire())
	assert.Equal(t, 2, l.Count())
	assert.EqualValues(t, 1, l.Blocked())

	l.Release()
	assert.True(t, l.Acquire())
	assert.Equal(t, 2, l.Max())
}

func TestSessionLimiter_Unlimited(t *testing.T) {
	l := NewSessionLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Acquire())
	}
	assert.Equal(t, 100, l.Count())
	assert.Zero(t, l.Blocked())
}

func TestSessionLimiter_Concurrent(t *testing.T) {
	l := NewSessionLimiter(10)

	var (
		wg      sync.WaitGroup
		granted sync.Map
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Acquire() {
				granted.Store(i, true)
			}
		}()
	}
	wg.Wait()

	n := 0
	granted.Range(func(any, any) bool { n++; return true })
	assert.Equal(t, 10, n)
	assert.Equal(t, 10, l.Count())
	assert.EqualValues(t, 40, l.Blocked())
}
