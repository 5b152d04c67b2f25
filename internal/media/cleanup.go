package media

import (
	"context"
	"log"
	"time"
)

const (
	cleanupQueueSize   = 256
	cleanupMaxAttempts = 3
)

// Cleaner deletes external assets in the background. Deletions are
// best-effort: they retry with backoff a few times and then give up with a
// log line, never surfacing to the request that scheduled them.
type Cleaner struct {
	store   Store
	queue   chan string
	backoff time.Duration
	done    chan struct{}
}

func NewCleaner(store Store) *Cleaner {
	c := &Cleaner{
		store:   store,
		queue:   make(chan string, cleanupQueueSize),
		backoff: 500 * time.Millisecond,
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

// Schedule enqueues an asset deletion. A full queue drops the task rather
// than blocking the caller.
func (c *Cleaner) Schedule(publicID string) {
	if publicID == "" {
		return
	}
	select {
	case c.queue <- publicID:
	default:
		log.Printf("media cleanup queue full, dropping asset %s", publicID)
	}
}

// Close drains the queue and stops the worker.
func (c *Cleaner) Close() {
	close(c.queue)
	<-c.done
}

func (c *Cleaner) run() {
	defer close(c.done)
	for publicID := range c.queue {
		c.deleteWithRetry(publicID)
	}
}

func (c *Cleaner) deleteWithRetry(publicID string) {
	for attempt := 0; attempt < cleanupMaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.store.Delete(ctx, publicID)
		cancel()
		if err == nil {
			return
		}

		if attempt+1 == cleanupMaxAttempts {
			log.Printf("media cleanup gave up on asset %s: %v", publicID, err)
			return
		}
		log.Printf("media cleanup retrying asset %s (attempt %d): %v", publicID, attempt+1, err)
		time.Sleep(c.backoff << attempt)
	}
}
