package agentModel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

func TestConversation_LastFromSkipsToolRequests(t *testing.T) {
	c := NewConversation(UserMessage("excerpt"))
	c.Append(Message{Role: RoleAssistant, Name: RetrieverAgent, ToolCalls: []ToolCall{{Name: "match_regulations"}}})
	assert.False(t, c.HasOutputFrom(RetrieverAgent))

	c.Append(AssistantMessage(RetrieverAgent, "passages"))
	m, ok := c.LastFrom(RetrieverAgent)
	assert.True(t, ok)
	assert.Equal(t, "passages", m.Content)
}

func TestConversation_MessagesIsCopy(t *testing.T) {
	c := NewConversation(UserMessage("a"))
	msgs := c.Messages()
	msgs[0].Content = "changed"
	assert.Equal(t, "a", c.Messages()[0].Content)
}

func TestConversation_UserContent(t *testing.T) {
	c := NewConversation(UserMessage("one"), AssistantMessage(ReportAgent, "x"), UserMessage("two"))
	assert.Equal(t, "one\n\ntwo", c.UserContent())
}

func TestState_Apply(t *testing.T) {
	s := NewState(nil)
	s.Apply(Turn{
		Agent:    RetrieverAgent,
		Messages: []Message{AssistantMessage(RetrieverAgent, "found")},
		Passages: []commonModels.SearchResult{{Content: "clause"}},
	})
	assert.False(t, s.GapsReady)
	s.Apply(Turn{Agent: GapAnalyzerAgent, GapsReady: true, Insufficient: true})
	assert.True(t, s.Insufficient)
	s.Apply(Turn{Agent: ReportAgent, Report: "report", Insufficient: false})

	assert.Equal(t, []AgentName{RetrieverAgent, GapAnalyzerAgent, ReportAgent}, s.Steps)
	assert.True(t, s.GapsReady)
	assert.Empty(t, s.Gaps)
	assert.Len(t, s.Passages, 1)
	assert.Equal(t, "report", s.Report)
	assert.True(t, s.Insufficient, "only the gap analysis decides insufficiency")
	assert.True(t, s.Ran(GapAnalyzerAgent))
	assert.False(t, s.Ran(WebSearchAgent))
	assert.Equal(t, 1, s.Conversation.Len())
}
