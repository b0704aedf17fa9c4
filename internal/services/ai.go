package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/report-tracker-api/internal/constants"
	"github.com/yukikurage/report-tracker-api/internal/models"
	"github.com/yukikurage/report-tracker-api/internal/policy"
)

// IssueSuggester proposes issues found in free text.
type IssueSuggester interface {
	SuggestIssues(ctx context.Context, text string) ([]SuggestedIssue, error)
}

type SuggestedIssue struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Priority    models.IssuePriority `json:"priority"`
}

type AIService struct {
	client *openai.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestIssues asks the model for problems mentioned in a shift report.
func (s *AIService) SuggestIssues(ctx context.Context, text string) ([]SuggestedIssue, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIUnavailable
	}

	prompt := fmt.Sprintf(`You review daily shift reports from a utility plant.
List every equipment or process problem mentioned in the report below as an issue.

Report:
%s

Reply with a JSON array only:
[
  {
    "title": "short issue title",
    "description": "what was observed and where",
    "priority": "low | medium | high"
  }
]

Rules:
- Return [] when the report mentions no problems
- Use high only for safety risks or stopped equipment
- Keep the language of the report`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.2,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

// parseSuggestions accepts a bare JSON array or one wrapped in a markdown fence,
// and normalizes priorities the same way issue creation does.
func parseSuggestions(content string) ([]SuggestedIssue, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	out := make([]SuggestedIssue, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		out = append(out, SuggestedIssue{
			Title:       title,
			Description: strings.TrimSpace(r.Description),
			Priority:    models.NormalizePriority(r.Priority),
		})
		if len(out) == constants.MaxAISuggestedIssues {
			break
		}
	}
	return out, nil
}

// SuggestIssues runs the suggester over a report the actor can read.
// Nothing is persisted; the client creates the issues it wants to keep.
func (s *ReportService) SuggestIssues(ctx context.Context, actor *policy.Actor, id uint64) ([]SuggestedIssue, error) {
	report, err := s.authorized(ctx, actor, id, policy.ActionReadReport)
	if err != nil {
		return nil, err
	}
	if s.suggester == nil {
		return nil, ErrAIUnavailable
	}
	return s.suggester.SuggestIssues(ctx, report.Content)
}
