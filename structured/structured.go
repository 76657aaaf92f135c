package structured

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"

	"github.com/tbxark/bureaubot/llm"
)

// CorrectionNote is appended to the user prompt after a reply that held no
// usable JSON.
const CorrectionNote = "Your previous reply was not valid JSON. Reply again with only the JSON value, no markdown and no commentary."

type Prompt struct {
	System  string
	User    string
	History []*schema.Message
}

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) (*Prompt, error)

// MalformedError reports that every attempt produced a reply without usable
// JSON. Raw holds the last reply.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed model reply: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Chain asks a delegate for a JSON value of type TOutput, extracting it from
// free text and re-prompting under the shared retry policy.
type Chain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	Delegate      llm.Delegate
	Policy        llm.Policy
	Schema        string

	extract func(string) (string, bool)
}

type ChainOption func(*chainOptions)

type chainOptions struct {
	includeSchema bool
}

// WithSchemaHint appends the JSON schema of the output type to the user prompt.
func WithSchemaHint() ChainOption {
	return func(o *chainOptions) {
		o.includeSchema = true
	}
}

func NewChain[TInput, TOutput any](
	delegate llm.Delegate,
	promptBuilder PromptBuilder[TInput],
	policy llm.Policy,
	opts ...ChainOption,
) (*Chain[TInput, TOutput], error) {
	var options chainOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	c := &Chain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		Delegate:      delegate,
		Policy:        policy,
		extract:       llm.ExtractObject,
	}
	switch reflect.TypeFor[TOutput]().Kind() {
	case reflect.Slice, reflect.Array:
		c.extract = llm.ExtractArray
	}
	if options.includeSchema {
		s, err := sonic.MarshalString(jsonschema.Reflect(new(TOutput)))
		if err != nil {
			return nil, fmt.Errorf("reflect output schema failed: %w", err)
		}
		c.Schema = s
	}
	return c, nil
}

func (c *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	prompt, err := c.PromptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}
	user := prompt.User
	if c.Schema != "" {
		user += fmt.Sprintf("\n\nReply JSON schema:\n```json\n%s\n```", c.Schema)
	}

	var (
		result    TOutput
		raw       string
		malformed bool
	)
	err = c.Policy.Do(ctx, func(ctx context.Context, attempt int) error {
		text := user
		if attempt > 0 {
			text = user + "\n\n" + CorrectionNote
		}
		reply, cErr := c.Delegate.Complete(ctx, prompt.System, text, prompt.History)
		if cErr != nil {
			malformed = false
			return fmt.Errorf("call model failed: %w", cErr)
		}
		raw = reply
		body, ok := c.extract(reply)
		if !ok {
			malformed = true
			return llm.Retryable(llm.ErrNoJSON)
		}
		var out TOutput
		if uErr := sonic.UnmarshalString(body, &out); uErr != nil {
			malformed = true
			return llm.Retryable(fmt.Errorf("parse model reply failed: %w", uErr))
		}
		malformed = false
		result = out
		return nil
	})
	if err != nil {
		if malformed && ctx.Err() == nil {
			return nil, &MalformedError{Raw: raw, Err: err}
		}
		return nil, err
	}
	return &result, nil
}

// IsMalformed reports whether err came from unusable model output rather
// than a transport failure.
func IsMalformed(err error) (*MalformedError, bool) {
	var m *MalformedError
	ok := errors.As(err, &m)
	return m, ok
}
