package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := km.Lock("inv-1")
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks, "lock entries should be reclaimed once released")
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := newKeyedMutex()

	releaseA := km.Lock("inv-a")
	defer releaseA()

	done := make(chan struct{})
	go func() {
		release := km.Lock("inv-b")
		release()
		close(done)
	}()

	// Holding inv-a must not block inv-b.
	<-done
}
