package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// CreateOpenAIChatModel baseURL may be empty for the public endpoint or point
// at any OpenAI-compatible server.
func CreateOpenAIChatModel(ctx context.Context, apiKey, baseURL, modelName string, timeout time.Duration) (model.ToolCallingChatModel, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model failed: %w", err)
	}
	return chatModel, nil
}
