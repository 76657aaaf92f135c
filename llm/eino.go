package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoDelegate completes prompts with any eino chat model.
type EinoDelegate struct {
	chatModel model.BaseChatModel
	gen       Generation
}

func NewEinoDelegate(chatModel model.BaseChatModel, gen Generation) *EinoDelegate {
	return &EinoDelegate{chatModel: chatModel, gen: gen}
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIDelegate builds a delegate backed by an OpenAI-compatible endpoint.
func NewOpenAIDelegate(ctx context.Context, conf OpenAIConfig, gen Generation) (*EinoDelegate, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return NewEinoDelegate(cm, gen), nil
}

func (d *EinoDelegate) Complete(ctx context.Context, system, user string, history []*schema.Message) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	for _, m := range history {
		if m != nil && m.Content != "" {
			messages = append(messages, m)
		}
	}
	messages = append(messages, schema.UserMessage(user))

	var opts []model.Option
	if d.gen.Temperature > 0 {
		opts = append(opts, model.WithTemperature(d.gen.Temperature))
	}
	if d.gen.TopP > 0 {
		opts = append(opts, model.WithTopP(d.gen.TopP))
	}
	if d.gen.MaxOutputTokens > 0 {
		opts = append(opts, model.WithMaxTokens(d.gen.MaxOutputTokens))
	}
	resp, err := d.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return resp.Content, nil
}

var _ Delegate = (*EinoDelegate)(nil)
