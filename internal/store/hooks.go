package store

import (
	"context"
	"sync"
)

type hooksKey struct{}

// Hooks collects functions to run once the enclosing transaction commits.
type Hooks struct {
	mu    sync.Mutex
	funcs []func(ctx context.Context)
}

// BeginHookScope returns a context under which AfterCommit defers work to
// the returned Hooks instead of running it immediately.
func BeginHookScope(ctx context.Context) (context.Context, *Hooks) {
	h := &Hooks{}
	return context.WithValue(ctx, hooksKey{}, h), h
}

// AfterCommit registers fn to run after the transaction carried by ctx
// commits. Outside a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	h, ok := ctx.Value(hooksKey{}).(*Hooks)
	if !ok {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.funcs = append(h.funcs, fn)
	h.mu.Unlock()
}

// Len returns the number of pending hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.funcs)
}

// Run executes and clears the pending hooks. ctx must not carry the hook
// scope itself, or hooks registering further hooks would be dropped.
func (h *Hooks) Run(ctx context.Context) {
	h.mu.Lock()
	funcs := h.funcs
	h.funcs = nil
	h.mu.Unlock()

	for _, fn := range funcs {
		fn(ctx)
	}
}
