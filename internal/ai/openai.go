package ai

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	appErr "github.com/screencraft/engine/pkg/errors"
)

// systemPrompt steers the model into the artifact block vocabulary the
// stream parser recognizes.
const systemPrompt = `You are a UI designer generating multi-screen designs.
Wrap every screen in an artifact block:

<artifact title="Screen Name" type="app|web">
...full HTML markup for the screen...
</artifact>

Use a unique, human-readable title per screen. Regenerate a screen by
emitting a new block with the same title. Outside artifact blocks, write a
short explanation of what you designed.`

// OpenAIClient streams chat completions from an OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient builds a streaming client. baseURL may be empty for the
// default OpenAI endpoint, or point at any compatible provider.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *OpenAIClient) StreamGenerate(ctx context.Context, prompt string, onDelta func(delta string) error) (string, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:  c.model,
		Stream: true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeUnavailable, "open completion stream failed")
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return full.String(), appErr.Wrap(err, appErr.CodeUnavailable, "completion stream failed")
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return full.String(), err
			}
		}
	}
	return full.String(), nil
}
