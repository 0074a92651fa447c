// Package notify fans events out to any number of subscribers.
package notify

import (
	"bytes"
	"runtime/pprof"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const multiplexerTimeout = 200 * time.Millisecond

type subscriber[E any] struct {
	ch      chan E
	comment string
}

type MultiplexerSender[E any] struct {
	m *Multiplexer[E]
}

// Send delivers e to every subscriber without blocking the caller.
// Events from one sender reach each subscriber in the order they were sent.
func (ms *MultiplexerSender[E]) Send(e E) {
	ms.m.queueLock.Lock()
	defer ms.m.queueLock.Unlock()
	ms.m.queue = append(ms.m.queue, e)
	if !ms.m.draining {
		ms.m.draining = true
		go ms.m.drain()
	}
}

func NewMultiplexerSender[E any](comment string) (*MultiplexerSender[E], *Multiplexer[E]) {
	m := &Multiplexer[E]{
		comment: comment,
	}
	return &MultiplexerSender[E]{m: m}, m
}

type Multiplexer[E any] struct {
	comment         string
	subscribersLock sync.Mutex
	subscribers     []subscriber[E]

	queueLock sync.Mutex
	queue     []E
	draining  bool
}

// subscribersLock must be taken!
func (m *Multiplexer[E]) cleanup() {
	last := len(m.subscribers) - 1
	if last < 0 || m.subscribers[last].ch == nil {
		return
	}
	for i, sub := range m.subscribers {
		if sub.ch == nil {
			m.subscribers[i], m.subscribers[last] = m.subscribers[last], subscriber[E]{}
			return
		}
	}
}

func (m *Multiplexer[E]) Subscribe(comment string, c chan E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	sub := subscriber[E]{
		ch:      c,
		comment: comment,
	}
	last := len(m.subscribers) - 1
	if last >= 0 && m.subscribers[last].ch == nil {
		m.subscribers[last] = sub
		m.cleanup()
	} else {
		m.subscribers = append(m.subscribers, sub)
	}
}

func (m *Multiplexer[E]) Unsubscribe(c chan E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	i := slices.IndexFunc(m.subscribers, func(sub subscriber[E]) bool { return sub.ch == c })
	if i == -1 {
		panic("already unsubscribed")
	}
	m.subscribers[i] = subscriber[E]{}
	m.cleanup()
}

func (m *Multiplexer[E]) drain() {
	for {
		m.queueLock.Lock()
		if len(m.queue) == 0 {
			m.draining = false
			m.queueLock.Unlock()
			return
		}
		e := m.queue[0]
		m.queue = m.queue[1:]
		m.queueLock.Unlock()
		m.send(e)
	}
}

func (m *Multiplexer[E]) send(e E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	for _, sub := range m.subscribers {
		if sub.ch == nil {
			continue
		}
		select {
		case sub.ch <- e:
		case <-time.After(multiplexerTimeout):
			m.timeout(sub, e)
		}
	}
}

func (m *Multiplexer[E]) timeout(sub subscriber[E], e E) {
	var b bytes.Buffer
	pprof.Lookup("goroutine").WriteTo(&b, 1)
	zap.S().Warnw("subscriber timed out",
		"multiplexer", m.comment,
		"subscriber", sub.comment,
		"event", e,
		"goroutines", b.String())
}
