package builtin

import (
	"context"
	"time"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/chatmodel"
	"github.com/agentcore/agentcore/message"
	"github.com/agentcore/agentcore/middleware"
)

// estimateTokens approximates token count the way the rest of the
// ecosystem's quick estimators do: roughly 4 characters per token. It is
// intentionally crude — the strategy only needs a monotonic proxy for
// message-list size, not an exact count (tokenization itself is a
// Non-goal).
func estimateTokens(messages []message.Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content()) / 4
		for _, tc := range m.ToolCalls() {
			total += len(tc.ArgumentsJSON) / 4
		}
	}
	return total
}

// Summarizer performs the auxiliary model call that condenses a run of
// older messages into a single summary message.
type Summarizer interface {
	Summarize(ctx context.Context, messages []message.Message) (string, error)
}

// ModelSummarizer adapts a chatmodel.Model into a Summarizer via a fixed
// instruction prompt.
type ModelSummarizer struct {
	Model chatmodel.Model
}

func (s ModelSummarizer) Summarize(ctx context.Context, messages []message.Message) (string, error) {
	prompt := message.NewHuman(
		"Summarize the preceding conversation messages concisely, preserving facts and decisions relevant to continuing the task.",
		"",
		time.Now(),
	)
	resp, err := s.Model.Chat(ctx, append(append([]message.Message(nil), messages...), prompt), chatmodel.Options{})
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

// Summarization replaces older messages with a synthesized summary once the
// estimated token usage of state.messages crosses tokenThreshold, preserving
// the initial system prompt and the last keepLastN messages.
type Summarization struct {
	middleware.Base
	summarizer    Summarizer
	tokenThreshold int
	keepLastN      int
}

// NewSummarization builds a Summarization middleware.
func NewSummarization(summarizer Summarizer, tokenThreshold, keepLastN, priority int) *Summarization {
	return &Summarization{
		Base:           middleware.Base{MiddlewareName: "summarization", MiddlewarePriority: priority},
		summarizer:     summarizer,
		tokenThreshold: tokenThreshold,
		keepLastN:      keepLastN,
	}
}

func (s *Summarization) BeforeInvoke(c *middleware.Context) error {
	state := c.State()
	messages := state.Messages()
	if estimateTokens(messages) <= s.tokenThreshold {
		return nil
	}
	if len(messages) <= s.keepLastN+1 {
		return nil
	}

	var systemMsg *message.Message
	start := 0
	if len(messages) > 0 && messages[0].Kind() == message.KindSystem {
		m := messages[0]
		systemMsg = &m
		start = 1
	}
	cut := len(messages) - s.keepLastN
	if cut <= start {
		return nil
	}
	toSummarize := messages[start:cut]
	kept := messages[cut:]

	summary, err := s.summarizer.Summarize(context.Background(), toSummarize)
	if err != nil {
		return err
	}

	now := time.Now()
	// Merge into the single retained system message rather than appending a
	// second KindSystem message: §3 allows at most one, at index 0.
	summaryLine := "Conversation summary: " + summary
	mergedContent := summaryLine
	if systemMsg != nil {
		mergedContent = systemMsg.Content() + "\n\n" + summaryLine
	}
	rebuilt := make([]message.Message, 0, len(kept)+1)
	rebuilt = append(rebuilt, message.NewSystem(mergedContent, now))
	rebuilt = append(rebuilt, kept...)

	newState := agentstate.Rebuild(rebuilt, state.DataSnapshot(), state.Version()+1, now)
	c.SetState(newState)
	return nil
}
