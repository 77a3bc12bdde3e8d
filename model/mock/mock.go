// Package mock provides a scripted model.Model for tests. It records every
// request and answers from a queue of replies, so no network is involved.
package mock

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/ezra/model"
)

// ErrExhausted is returned once every scripted reply has been consumed.
var ErrExhausted = errors.New("mock: no scripted reply left")

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Text returns a successful reply.
func Text(s string) Reply {
	return Reply{Text: s}
}

// Fail returns a failing reply.
func Fail(err error) Reply {
	return Reply{Err: err}
}

// Model answers Generate calls from its script in order. When a responder
// function is set it is used instead of the script.
type Model struct {
	mu        sync.Mutex
	replies   []Reply
	respond   func(model.Request) Reply
	requests  []model.Request
	blockDone bool
}

// New creates a Model that returns replies in order.
func New(replies ...Reply) *Model {
	return &Model{replies: replies}
}

// NewFunc creates a Model that computes each reply from the request.
func NewFunc(fn func(model.Request) Reply) *Model {
	return &Model{respond: fn}
}

// Blocking creates a Model that waits for its context to end and returns
// the context error, for exercising timeouts and cancellation.
func Blocking() *Model {
	return &Model{blockDone: true}
}

func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	block := m.blockDone
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply, err := m.next(req)
	if err != nil {
		return nil, err
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &model.Response{Text: reply.Text, Raw: reply.Text}, nil
}

func (m *Model) next(req model.Request) (Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.respond != nil {
		return m.respond(req), nil
	}
	if len(m.replies) == 0 {
		return Reply{}, ErrExhausted
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

// Requests returns every request received, in order.
func (m *Model) Requests() []model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// Calls returns the number of Generate calls received.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request.
func (m *Model) LastRequest() (model.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return model.Request{}, false
	}
	return m.requests[len(m.requests)-1], true
}
