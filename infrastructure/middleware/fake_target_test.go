package middleware

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lf-go/pretsched/internal/ports"
)

// fakeTarget is a controllable ports.TargetTypes double: it can return a
// fixed error, sleep before responding, and counts calls for assertions.
type fakeTarget struct {
	name      string
	err       error
	sleep     time.Duration
	callCount int64
}

func newFakeTarget() *fakeTarget { return &fakeTarget{name: "fake"} }

func (f *fakeTarget) callsMade() int { return int(atomic.LoadInt64(&f.callCount)) }

func (f *fakeTarget) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeTarget) SupportsGenerics() bool { return false }

func (f *fakeTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	return "literal", nil
}

func (f *fakeTarget) RenderType(t ports.Type) (string, error) { return "type", nil }

func (f *fakeTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	return f.respond(ctx)
}

func (f *fakeTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	return f.respond(ctx)
}

func (f *fakeTarget) respond(ctx context.Context) (string, error) {
	atomic.AddInt64(&f.callCount, 1)
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "rendered", nil
}
