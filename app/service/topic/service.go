package topic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"metbot/app/config"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

const (
	maxGenDuration   = 30 * time.Second
	minContextLength = 4
	plainTextLength  = 12
)

type Service struct {
	cfg    *config.Config
	client *openai.Client
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{cfg: cfg}

	if cfg.OpenAI.Token != "" {
		clientConfig := openai.DefaultConfig(cfg.OpenAI.Token)
		clientConfig.BaseURL = cfg.OpenAI.BaseURL
		clientConfig.HTTPClient = &http.Client{
			Timeout: 30 * time.Second,
		}

		s.client = openai.NewClientWithConfig(clientConfig)
	}

	return s, nil
}

// Sentence generates a one-line conversation opener from what the owner
// remembered about the contact. Returns false whenever no sentence is
// available: generation disabled, context too thin, or any provider error.
// Failures never propagate past this service.
func (s *Service) Sentence(ctx context.Context, name, about, event string) (string, bool) {
	if s.client == nil || !meaningful(about) {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, maxGenDuration)
	defer cancel()

	prompt := fmt.Sprintf(
		"I met %s at %s. I remember: %s. "+
			"Write exactly one short, friendly sentence I can put in a follow-up message "+
			"referencing what we talked about. Output only the sentence.",
		name, event, about)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.cfg.OpenAI.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: 100,
		},
	)
	if err != nil {
		slog.Warn("Topic sentence generation failed", "name", name, "error", err)
		return "", false
	}

	if len(resp.Choices) == 0 {
		return "", false
	}

	sentence := strings.TrimSpace(resp.Choices[0].Message.Content)
	if sentence == "" {
		return "", false
	}

	return sentence, true
}

// meaningful filters out contexts too thin to say anything about: a bare
// word like "AI" produces worse openers than no opener at all.
func meaningful(about string) bool {
	trimmed := strings.TrimSpace(about)
	if len(trimmed) < minContextLength {
		return false
	}

	return strings.Contains(trimmed, " ") || len(trimmed) >= plainTextLength
}
