package ai

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/river2spring/monad-agent-dating-app/core"
)

// Narrator turns settled rounds into short dashboard stories. Optional: a
// nil Narrator is valid and narrates nothing.
type Narrator struct {
	client *openai.Client
}

// NewNarrator returns a narrator backed by the OpenAI API, or nil when no
// key is configured.
func NewNarrator(apiKey string) *Narrator {
	if apiKey == "" {
		return nil
	}
	return &Narrator{client: openai.NewClient(apiKey)}
}

// NarrateRound produces a one-or-two sentence story for a settled round.
func (n *Narrator) NarrateRound(ctx context.Context, ev core.SettlementEvent, a1, a2 core.AgentView) (string, error) {
	if n == nil {
		return "", nil
	}

	prompt := fmt.Sprintf(
		`Two AI agents are in a trust bond on the Monad dating economy.
%s (%s attachment) played %s; %s (%s attachment) played %s.
Payouts: %.2f and %.2f. Round %d of their bond%s.
Write 1-2 dramatic sentences narrating this round, tabloid style.`,
		a1.Name, a1.Style, ev.Result.Move1,
		a2.Name, a2.Style, ev.Result.Move2,
		ev.Result.Payout1, ev.Result.Payout2,
		ev.Result.Round, finalClause(ev.Final),
	)

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   120,
		Temperature: 1.0,
	})
	if err != nil {
		log.Printf("Narration failed for bond %s: %v", ev.BondID, err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty narration response for bond %s", ev.BondID)
	}
	return resp.Choices[0].Message.Content, nil
}

func finalClause(final bool) string {
	if final {
		return ", and it was their last"
	}
	return ""
}
