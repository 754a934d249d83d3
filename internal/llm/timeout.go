package llm

import (
	"context"
	"errors"
	"time"

	"github.com/nfrund/charroom/internal/domain"
)

type timeoutProvider struct {
	next    Provider
	timeout time.Duration
}

// WithTimeout bounds every Generate call of p by d. A call that outlives
// d fails with a ProviderError of kind timeout, even if p ignores ctx.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{next: p, timeout: d}
}

func (t *timeoutProvider) Name() string { return t.next.Name() }

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		resp *Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := t.next.Generate(ctx, req)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !domain.IsProviderTimeout(r.err) {
			return nil, &domain.ProviderError{Kind: domain.ProviderTimeout, Provider: t.Name(), Err: r.err}
		}
		return r.resp, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &domain.ProviderError{Kind: domain.ProviderTimeout, Provider: t.Name(), Err: ctx.Err()}
		}
		return nil, &domain.ProviderError{Kind: domain.ProviderUnavailable, Provider: t.Name(), Err: ctx.Err()}
	}
}
