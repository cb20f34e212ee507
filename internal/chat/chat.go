// Package chat wraps an Eino chat model with the retry policy and error
// taxonomy shared by the coaching pipeline. Each agent stage talks to the
// model through this client rather than holding the model directly.
package chat

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/peakform/coach-go/internal/errs"
)

// DefaultTemperature is the sampling temperature used for every pipeline
// call. Coaching answers need to stay grounded in the retrieved context, so
// sampling is kept low.
const DefaultTemperature float32 = 0.4

// Client is the interface the agent stages depend on. It is satisfied by
// *ModelClient and by test fakes.
type Client interface {
	// Run sends the messages to the model and returns the assistant's text.
	Run(ctx context.Context, messages []*schema.Message) (string, error)
}

// ModelClient runs chat completions against an Eino chat model, retrying
// transient network failures.
type ModelClient struct {
	model       model.BaseChatModel
	temperature float32
	retry       errs.RetryConfig
}

// Option configures a ModelClient.
type Option func(*ModelClient)

// WithTemperature overrides the default sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *ModelClient) { c.temperature = t }
}

// WithRetry overrides the default transient-failure retry policy.
func WithRetry(cfg errs.RetryConfig) Option {
	return func(c *ModelClient) { c.retry = cfg }
}

// New constructs a ModelClient around the given chat model.
func New(m model.BaseChatModel, opts ...Option) *ModelClient {
	c := &ModelClient{
		model:       m,
		temperature: DefaultTemperature,
		retry:       errs.DefaultRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run sends the messages to the model and returns the assistant's text
// content. Transient failures are retried; exhausted retries and empty
// responses surface as chat errors.
func (c *ModelClient) Run(ctx context.Context, messages []*schema.Message) (string, error) {
	var content string
	err := errs.WithRetry(ctx, c.retry, func() error {
		resp, err := c.model.Generate(ctx, messages, model.WithTemperature(c.temperature))
		if err != nil {
			return err
		}
		if resp == nil || resp.Content == "" {
			return errEmptyResponse
		}
		content = resp.Content
		return nil
	})
	if err != nil {
		return "", errs.NewChat("chat completion failed", err)
	}
	return content, nil
}

// errEmptyResponse marks a completion that returned no text content.
var errEmptyResponse = &emptyResponseError{}

type emptyResponseError struct{}

func (*emptyResponseError) Error() string { return "model returned empty content" }
