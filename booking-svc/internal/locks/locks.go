// Package locks provides the critical sections the booking flows run under:
// one in-process keyed mutex and an optional Redis lock shared by replicas.
package locks

import (
	"context"
	"strconv"
	"sync"
)

// Locker serializes work on one key. The returned unlock must be called
// exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// DateKey guards admission and availability changes of one calendar day.
func DateKey(date string) string {
	return "date:" + date
}

func OrderKey(id int) string {
	return "order:" + strconv.Itoa(id)
}

func ReservationKey(id int) string {
	return "reservation:" + strconv.Itoa(id)
}

func ClientKey(email string) string {
	return "client:" + email
}

type entry struct {
	sem  chan struct{}
	refs int
}

// Keyed is an in-process mutex per key. Entries are dropped once nobody
// holds or waits for them.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

func (k *Keyed) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.drop(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.drop(key, e)
		})
	}, nil
}

func (k *Keyed) drop(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

func (k *Keyed) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// Chain takes every lock in order and releases them in reverse.
type Chain []Locker

func (c Chain) Lock(ctx context.Context, key string) (func(), error) {
	unlocks := make([]func(), 0, len(c))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, locker := range c {
		if locker == nil {
			continue
		}
		unlock, err := locker.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

var (
	_ Locker = (*Keyed)(nil)
	_ Locker = Chain(nil)
)
