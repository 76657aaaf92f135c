package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// GenAIDelegate completes prompts with the Gemini API.
type GenAIDelegate struct {
	client *genai.Client
	model  string
	gen    Generation
}

func NewGenAIDelegate(ctx context.Context, apiKey, modelName string, gen Generation) (*GenAIDelegate, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIDelegate{client: client, model: modelName, gen: gen}, nil
}

func (d *GenAIDelegate) Complete(ctx context.Context, system, user string, history []*schema.Message) (string, error) {
	contents := toContents(history)
	contents = append(contents, genai.NewContentFromText(user, genai.RoleUser))

	conf := &genai.GenerateContentConfig{}
	if system != "" {
		conf.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(system)}}
	}
	if d.gen.Temperature > 0 {
		conf.Temperature = genai.Ptr(d.gen.Temperature)
	}
	if d.gen.TopP > 0 {
		conf.TopP = genai.Ptr(d.gen.TopP)
	}
	if d.gen.MaxOutputTokens > 0 {
		conf.MaxOutputTokens = int32(d.gen.MaxOutputTokens)
	}
	resp, err := d.client.Models.GenerateContent(ctx, d.model, contents, conf)
	if err != nil {
		return "", fmt.Errorf("gemini call failed: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func toContents(history []*schema.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		if m == nil || m.Content == "" {
			continue
		}
		switch m.Role {
		case schema.User:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
		case schema.Assistant:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}
	return out
}

var _ Delegate = (*GenAIDelegate)(nil)
