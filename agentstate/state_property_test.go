package agentstate_test

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agentcore/agentcore/agentstate"
	"github.com/agentcore/agentcore/message"
)

// TestAppendMessageVersionMonotonicityProperty verifies §8's version
// invariant: appending N human messages in a row to a fresh State always
// produces a State whose Version equals N and whose message count equals N.
func TestAppendMessageVersionMonotonicityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("appending N messages advances Version by exactly N", prop.ForAll(
		func(contents []string) bool {
			now := time.Now()
			state := agentstate.New("", now)
			for _, c := range contents {
				next, err := state.AppendMessage(message.NewHuman(c, "u1", now), now)
				if err != nil {
					return false
				}
				if next.Version() != state.Version()+1 {
					return false
				}
				state = next
			}
			return state.Version() == int64(len(contents)) && state.MessageCount() == len(contents)
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestToolMessageCorrelationProperty verifies §8: a Tool message only
// appends successfully when its ToolCallID matches one of the ToolCalls on
// the immediately preceding Assistant message; any other id is rejected.
func TestToolMessageCorrelationProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("tool message succeeds iff its id matches a pending call", prop.ForAll(
		func(realID, bogusID string) bool {
			if realID == bogusID {
				return true // nothing to distinguish in this case
			}
			now := time.Now()
			state := agentstate.New("", now)
			state, err := state.AppendMessage(
				message.NewAssistant("", []message.ToolCall{{ID: realID, Name: "t", ArgumentsJSON: "{}"}}, now),
				now,
			)
			if err != nil {
				return false
			}

			if _, err := state.AppendMessage(message.NewTool(bogusID, "x", false, "", now), now); err == nil {
				return false
			}
			if _, err := state.AppendMessage(message.NewTool(realID, "x", false, "", now), now); err != nil {
				return false
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}
