package redis

import (
	"math/rand"
	"sync"
	"time"
)

// jitter spreads expirations by up to 10% of ttl.
type jitter struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func newJitter() *jitter {
	return &jitter{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (j *jitter) ttl(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	jitterMax := int64(base) / 10
	j.mu.Lock()
	defer j.mu.Unlock()
	return base + time.Duration(j.rnd.Int63n(jitterMax+1))
}
