package agentModel

import (
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type AgentName string

const (
	ClassifierAgent  AgentName = "filter_agent"
	RetrieverAgent   AgentName = "compliance_retriever_agent"
	WebSearchAgent   AgentName = "web_search_agent"
	GapAnalyzerAgent AgentName = "gap_analyzer_agent"
	ReportAgent      AgentName = "report_generator_agent"
)

// Message is one entry of the shared conversation. Name is the agent that
// authored an assistant or tool message, empty for the user.
type Message struct {
	Role       Role       `json:"role"`
	Name       AgentName  `json:"name,omitempty"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type ToolSpec struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
)

// Schema is the JSON schema subset providers need for tool parameters and structured output.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(agent AgentName, content string) Message {
	return Message{Role: RoleAssistant, Name: agent, Content: content}
}

// Conversation grows monotonically during one run and is never persisted.
type Conversation struct {
	messages []Message
}

func NewConversation(msgs ...Message) *Conversation {
	c := &Conversation{}
	c.Append(msgs...)
	return c
}

func (c *Conversation) Append(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
}

// Messages returns a copy so callers cannot rewrite history.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// LastFrom returns the last assistant message authored by agent.
func (c *Conversation) LastFrom(agent AgentName) (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := c.messages[i]
		if m.Role == RoleAssistant && m.Name == agent && len(m.ToolCalls) == 0 {
			return m, true
		}
	}
	return Message{}, false
}

func (c *Conversation) HasOutputFrom(agent AgentName) bool {
	_, ok := c.LastFrom(agent)
	return ok
}

// UserContent concatenates the user supplied messages (document excerpts).
func (c *Conversation) UserContent() string {
	var out string
	for _, m := range c.messages {
		if m.Role != RoleUser || m.Content == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Content
	}
	return out
}

// State is everything one supervisor run accumulates.
type State struct {
	Conversation *Conversation
	Passages     []commonModels.SearchResult
	Gaps         []commonModels.ComplianceGap
	GapsReady    bool
	// Insufficient is set when the gap analysis lacked the context to decide.
	Insufficient bool
	Report       string
	Steps        []AgentName
}

func NewState(conv *Conversation) *State {
	if conv == nil {
		conv = NewConversation()
	}
	return &State{Conversation: conv}
}

// Turn is what a single agent invocation hands back to the supervisor.
type Turn struct {
	Agent        AgentName
	Messages     []Message
	Passages     []commonModels.SearchResult
	Gaps         []commonModels.ComplianceGap
	GapsReady    bool
	Insufficient bool
	Report       string
}

func (s *State) Apply(t Turn) {
	s.Steps = append(s.Steps, t.Agent)
	s.Conversation.Append(t.Messages...)
	s.Passages = append(s.Passages, t.Passages...)
	if t.GapsReady {
		s.Gaps = t.Gaps
		s.GapsReady = true
		s.Insufficient = t.Insufficient
	}
	if t.Report != "" {
		s.Report = t.Report
	}
}

func (s *State) Ran(agent AgentName) bool {
	for _, a := range s.Steps {
		if a == agent {
			return true
		}
	}
	return false
}
