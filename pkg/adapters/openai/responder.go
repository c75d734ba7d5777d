// Package openai answers general conversation with an OpenAI-compatible chat
// completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/teller/pkg/ports"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const (
	defaultTimeout   = 10 * time.Second
	defaultMaxTokens = 300
)

// SystemPrompt frames the assistant. It is sent with every request.
const SystemPrompt = `Tu es un assistant bancaire intelligent d'Amen Bank, spécialisé dans les services bancaires en ligne en Tunisie.

CONTEXTE:
- Tu travailles pour Amen Bank, une banque tunisienne moderne
- Tu communiques en français avec les clients
- Tu peux aider avec: consultation de comptes, virements, crédits, informations bancaires
- La devise principale est le Dinar Tunisien (TND)

STYLE DE COMMUNICATION:
- Professionnel mais chaleureux
- Précis et informatif
- Utilise des emojis appropriés (💰, 🏦, ✅, etc.)
- Toujours proposer des actions concrètes

INSTRUCTIONS IMPORTANTES:
- N'exécute jamais d'opération toi-même : les virements, dépôts, retraits et crédits passent par l'assistant transactionnel
- Ne communique jamais de solde ou de numéro de compte
- Respecter la confidentialité bancaire
- En cas de problème technique, orienter vers un conseiller

Réponds de manière naturelle et utile aux demandes des clients.`

// ErrNoChoices is returned when the API answers without any completion.
var ErrNoChoices = errors.New("openai: no choices returned")

// Responder implements ports.Responder.
type Responder struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	maxTokens   int
	temperature float32
}

// Option configures a Responder.
type Option func(*Responder)

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(r *Responder) {
		if model != "" {
			r.model = model
		}
	}
}

// WithTimeout bounds each completion request.
func WithTimeout(d time.Duration) Option {
	return func(r *Responder) {
		r.timeout = d
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(r *Responder) {
		r.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(r *Responder) {
		r.temperature = t
	}
}

// New creates a Responder for apiKey. An empty baseURL targets api.openai.com.
func New(apiKey, baseURL string, opts ...Option) *Responder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return NewFromClient(openai.NewClientWithConfig(cfg), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *openai.Client, opts ...Option) *Responder {
	r := &Responder{
		client:      client,
		model:       DefaultModel,
		timeout:     defaultTimeout,
		maxTokens:   defaultMaxTokens,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reply implements ports.Responder.
func (r *Responder) Reply(ctx context.Context, req ports.ReplyRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleSystem, Content: userContext(req.UserID)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func userContext(userID int64) string {
	if userID == 0 {
		return "CONTEXTE UTILISATEUR: Utilisateur non connecté"
	}
	return fmt.Sprintf("CONTEXTE UTILISATEUR: Client authentifié (id %d)", userID)
}
