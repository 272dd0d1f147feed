package syncx_test

import (
	"sync"
	"testing"

	"github.com/central-university-dev/go-wallpost/pkg/syncx"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := syncx.NewKeyedMutex()

	const goroutines = 50

	counter := 0

	var wg sync.WaitGroup

	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()

			km.Lock(1)
			defer km.Unlock(1)

			counter++
		}()
	}

	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	km := syncx.NewKeyedMutex()

	km.Lock(1)

	done := make(chan struct{})

	go func() {
		km.Lock(2)
		km.Unlock(2)
		close(done)
	}()

	<-done

	km.Unlock(1)
}

func TestKeyedMutex_ReusableAfterUnlock(t *testing.T) {
	km := syncx.NewKeyedMutex()

	km.Lock(1)
	km.Unlock(1)
	km.Lock(1)
	km.Unlock(1)
}
