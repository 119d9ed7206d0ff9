// Package comm is the message layer between workers. Every worker holds a
// Comm bound to its rank; payloads move over per-pair mailbox channels, so
// messages between a fixed pair arrive in send order. A receive states the
// tag and length it expects and fails the run on any mismatch rather than
// reinterpreting the payload.
package comm

import (
	"errors"
	"fmt"
	"sync"

	"exfield/model"
)

// ErrAborted is returned by operations interrupted because another worker
// already failed and tore the run down.
var ErrAborted = errors.New("run aborted")

// Message tags. One tag per pipeline phase; a tag mismatch on receive means
// the two sides disagree about what phase they are in.
const (
	TagBlock = iota + 1
	TagFaceX
	TagFaceY
	TagFaceZ
	TagMinCounts
	TagMaxCounts
	TagMinValues
	TagMaxValues
	TagReadTime
	TagComputeTime
	TagTotalTime
)

type message struct {
	tag  int
	data []float64
}

// Transport routes messages between the n workers of one run.
type Transport struct {
	n    int
	mail [][]chan message
	done chan struct{}
	once sync.Once
}

// NewTransport creates the mailboxes for n workers.
func NewTransport(n int) *Transport {
	t := &Transport{n: n, done: make(chan struct{})}
	t.mail = make([][]chan message, n)
	for from := range t.mail {
		t.mail[from] = make([]chan message, n)
		for to := range t.mail[from] {
			t.mail[from][to] = make(chan message, 4)
		}
	}
	return t
}

// Abort unblocks every pending and future operation with ErrAborted. Used
// when one worker hits a fatal error: a stalled peer would otherwise wait
// forever on a contribution that is never coming.
func (t *Transport) Abort() {
	t.once.Do(func() { close(t.done) })
}

// Rank returns the communicator endpoint for one worker.
func (t *Transport) Rank(rank int) *Comm {
	return &Comm{rank: rank, tr: t}
}

// Comm is one worker's view of the transport.
type Comm struct {
	rank int
	tr   *Transport
}

// Rank returns this worker's rank.
func (c *Comm) Rank() int { return c.rank }

// Size returns the worker count.
func (c *Comm) Size() int { return c.tr.n }

// Send delivers data to another rank. The caller must not modify data
// afterwards; faces and blocks are freshly copied buffers.
func (c *Comm) Send(to, tag int, data []float64) error {
	select {
	case <-c.tr.done:
		return ErrAborted
	default:
	}
	select {
	case c.tr.mail[c.rank][to] <- message{tag: tag, data: data}:
		return nil
	case <-c.tr.done:
		return ErrAborted
	}
}

// Recv blocks for a message from a rank and validates it against the
// expected tag and length. Either mismatch is a fatal protocol error.
func (c *Comm) Recv(from, tag, want int) ([]float64, error) {
	select {
	case m := <-c.tr.mail[from][c.rank]:
		if m.tag != tag {
			return nil, fmt.Errorf("%w: rank %d received tag %d from rank %d, expected %d",
				model.ErrProtocol, c.rank, m.tag, from, tag)
		}
		if len(m.data) != want {
			return nil, fmt.Errorf("%w: rank %d received %d values from rank %d, expected %d",
				model.ErrProtocol, c.rank, len(m.data), from, want)
		}
		return m.data, nil
	case <-c.tr.done:
		return nil, ErrAborted
	}
}

// SendRecv performs a paired exchange with one peer: the send is issued
// concurrently with the receive so two workers can exchange faces without
// deadlocking, and both halves have completed when it returns.
func (c *Comm) SendRecv(peer, tag int, data []float64, want int) ([]float64, error) {
	sent := make(chan error, 1)
	go func() {
		sent <- c.Send(peer, tag, data)
	}()
	got, rerr := c.Recv(peer, tag, want)
	serr := <-sent
	if rerr != nil {
		return nil, rerr
	}
	if serr != nil {
		return nil, serr
	}
	return got, nil
}
