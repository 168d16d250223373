package llm

import (
	"context"
	"fmt"

	"tutor-game-service/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// Client wraps the OpenAI SDK behind the two collaborator contracts the
// service needs: next-turn chat completion and raw quiz generation.
// OpenAI-compatible APIs work via BaseURL.
type Client struct {
	client    *openai.Client
	chatModel string
	quizModel string
}

type Config struct {
	APIKey    string
	BaseURL   string
	ChatModel string
	QuizModel string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	quizModel := cfg.QuizModel
	if quizModel == "" {
		quizModel = openai.GPT4oMini
	}

	return &Client{
		client:    openai.NewClientWithConfig(config),
		chatModel: chatModel,
		quizModel: quizModel,
	}, nil
}

// Complete returns the next assistant turn for the given conversation.
func (c *Client) Complete(ctx context.Context, turns []domain.ChatTurn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    mapRole(turn.Role),
			Content: turn.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

const quizPromptTemplate = `You are an expert tutor.

Based ONLY on the following conversation context, generate ONE multiple-choice quiz question.

Output ONLY valid JSON in this exact structure:

{
  "question": "string",
  "options": ["string1", "string2", "string3", "string4"],
  "correct_answer_index": 0
}

Conversation:
%s`

// GenerateRaw asks the model for one quiz question as strict JSON and
// returns its raw output. Validation happens in the caller.
func (c *Client) GenerateRaw(ctx context.Context, contextText string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.quizModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Return ONLY raw JSON. No explanations."},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(quizPromptTemplate, contextText)},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("quiz generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("quiz generation: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func mapRole(role string) string {
	switch role {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
