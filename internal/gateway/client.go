// Package gateway talks to the remote build/chat assistant. The assistant
// is an external collaborator; everything behind its request/response
// contract (reasoning, optimization, retries on its side) is out of scope.
package gateway

import (
	"context"
	"fmt"

	"github.com/RachedNaguez/PcBuilder/internal/config"
	"github.com/RachedNaguez/PcBuilder/internal/model"
)

// Client sends one chat/build request and returns the assistant's reply.
// Implementations must honor ctx cancellation and deadlines.
type Client interface {
	SendMessage(ctx context.Context, req *model.AssistantRequest) (*model.AssistantResponse, error)
}

// New builds the gateway client selected by the assistant config.
func New(cfg config.AssistantConfig) (Client, error) {
	switch cfg.Type {
	case "", "http":
		return NewHTTPClient(cfg), nil
	case "openai":
		return NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported assistant type: %s", cfg.Type)
	}
}
