package keylock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Houeta/deal-watch/internal/lib/keylock"
	"github.com/stretchr/testify/assert"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	t.Parallel()

	var (
		locker  keylock.Locker
		wg      sync.WaitGroup
		counter int
	)

	const workers = 50
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("iphone")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
	assert.Equal(t, 0, locker.Len())
}

func TestLocker_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	var locker keylock.Locker
	unlockA := locker.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key was blocked")
	}
}
