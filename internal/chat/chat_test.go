package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/peakform/coach-go/internal/errs"
)

// fakeModel returns scripted responses in order, one per Generate call.
type fakeModel struct {
	calls     int
	responses []*schema.Message
	errors    []error
}

func (f *fakeModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	i := f.calls
	f.calls++
	var resp *schema.Message
	var err error
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errors) {
		err = f.errors[i]
	}
	return resp, err
}

func (f *fakeModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

var noSleepRetry = errs.RetryConfig{
	Sleep: func(_ context.Context, _ time.Duration) error { return nil },
}

func TestRun_ReturnsContent(t *testing.T) {
	t.Parallel()

	fm := &fakeModel{responses: []*schema.Message{schema.AssistantMessage("push day: bench, dips, overhead press", nil)}}
	c := New(fm, WithRetry(noSleepRetry))

	got, err := c.Run(context.Background(), []*schema.Message{schema.UserMessage("plan my push day")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "push day: bench, dips, overhead press" {
		t.Errorf("Run() = %q", got)
	}
	if fm.calls != 1 {
		t.Errorf("want 1 model call, got %d", fm.calls)
	}
}

func TestRun_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	fm := &fakeModel{
		responses: []*schema.Message{nil, schema.AssistantMessage("ok", nil)},
		errors:    []error{errors.New("dial tcp: connection refused"), nil},
	}
	c := New(fm, WithRetry(noSleepRetry))

	got, err := c.Run(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "ok" {
		t.Errorf("Run() = %q", got)
	}
	if fm.calls != 2 {
		t.Errorf("want 2 model calls, got %d", fm.calls)
	}
}

func TestRun_PermanentErrorFailsFast(t *testing.T) {
	t.Parallel()

	fm := &fakeModel{errors: []error{errors.New("model not found")}}
	c := New(fm, WithRetry(noSleepRetry))

	_, err := c.Run(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if errs.CodeOf(err) != errs.CodeChat {
		t.Fatalf("want chat error, got %v", err)
	}
	if fm.calls != 1 {
		t.Errorf("permanent error should not retry, got %d calls", fm.calls)
	}
}

func TestRun_EmptyContentIsError(t *testing.T) {
	t.Parallel()

	fm := &fakeModel{responses: []*schema.Message{schema.AssistantMessage("", nil)}}
	c := New(fm, WithRetry(noSleepRetry))

	_, err := c.Run(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if errs.CodeOf(err) != errs.CodeChat {
		t.Fatalf("want chat error for empty content, got %v", err)
	}
}
