package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/RachedNaguez/PcBuilder/internal/config"
	"github.com/RachedNaguez/PcBuilder/internal/model"
)

const advisorPrompt = "You are a PC hardware advisor. Answer questions about " +
	"PC components, compatibility and value concisely and concretely."

// OpenAIClient serves discuss-mode conversations through any
// OpenAI-compatible chat completion endpoint. It cannot produce build
// payloads, so every reply is type "text"; installations that want full
// builds point the http client at a builder backend instead.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg config.AssistantConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai assistant requires an api key")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

func (c *OpenAIClient) SendMessage(ctx context.Context, req *model.AssistantRequest) (*model.AssistantResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advisorPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Message},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	// The remote side owns no session state here, so mint the correlation
	// id locally on first contact and echo it back afterwards.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	return &model.AssistantResponse{
		Content:   resp.Choices[0].Message.Content,
		Type:      "text",
		SessionID: sessionID,
	}, nil
}
