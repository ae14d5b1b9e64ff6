package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/triage"
)

type mockSearch struct {
	results   []commonModels.SearchResult
	err       error
	lastCount int
}

func (m *mockSearch) Search(ctx context.Context, query string, matchCount int) ([]commonModels.SearchResult, error) {
	m.lastCount = matchCount
	return m.results, m.err
}

type mockClassifier struct {
	rel commonModels.Relevance
	err error
}

func (m mockClassifier) Classify(ctx context.Context, text string) (commonModels.Relevance, error) {
	return m.rel, m.err
}

type mockTriager struct {
	res     triage.Result
	err     error
	lastDoc commonModels.Document
}

func (m *mockTriager) Triage(ctx context.Context, doc commonModels.Document) (triage.Result, error) {
	m.lastDoc = doc
	return m.res, m.err
}

func TestNewServer(t *testing.T) {
	t.Run("missing search returns error", func(t *testing.T) {
		s, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrMissingSearch)
	})

	t.Run("nil ports returns error", func(t *testing.T) {
		_, err := NewServer(nil)
		assert.ErrorIs(t, err, ErrMissingSearch)
	})

	t.Run("search only is valid", func(t *testing.T) {
		s, err := NewServer(&Ports{Search: &mockSearch{}})
		require.NoError(t, err)
		assert.NotNil(t, s.Handler())
	})
}

func TestServer_handleMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages with citations", func(t *testing.T) {
		search := &mockSearch{results: []commonModels.SearchResult{
			{Content: "Leak detection surveys three times a year", SourceName: "SOR-2018-66.pdf", ChunkIndex: 4, Similarity: 0.91},
		}}
		s, err := NewServer(&Ports{Search: search})
		require.NoError(t, err)

		_, out, err := s.handleMatch(ctx, nil, MatchInput{Query: "LDAR frequency", MatchCount: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, search.lastCount)
		require.Equal(t, 1, out.Count)
		assert.Equal(t, "[SOR-2018-66.pdf#4]", out.Passages[0].Citation)
		assert.Equal(t, "SOR-2018-66.pdf", out.Passages[0].Source)
	})

	t.Run("default match count", func(t *testing.T) {
		search := &mockSearch{}
		s, _ := NewServer(&Ports{Search: search})
		_, out, err := s.handleMatch(ctx, nil, MatchInput{Query: "flaring"})
		require.NoError(t, err)
		assert.Equal(t, 5, search.lastCount)
		assert.Equal(t, 0, out.Count)
		assert.NotNil(t, out.Passages)
	})

	t.Run("search failure surfaces", func(t *testing.T) {
		s, _ := NewServer(&Ports{Search: &mockSearch{err: errors.New("qdrant down")}})
		_, _, err := s.handleMatch(ctx, nil, MatchInput{Query: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "qdrant down")
	})
}

func TestServer_handleClassify(t *testing.T) {
	s, err := NewServer(&Ports{Search: &mockSearch{}, Classifier: mockClassifier{rel: commonModels.Relevant}})
	require.NoError(t, err)

	_, out, err := s.handleClassify(context.Background(), nil, ClassifyInput{Text: "Tank venting operations"})
	require.NoError(t, err)
	assert.Equal(t, "Relevant", out.Relevance)

	s, _ = NewServer(&Ports{Search: &mockSearch{}, Classifier: mockClassifier{err: errors.New("quota")}})
	_, _, err = s.handleClassify(context.Background(), nil, ClassifyInput{Text: "x"})
	assert.Error(t, err)
}

func TestServer_handleTriage(t *testing.T) {
	ctx := context.Background()

	t.Run("gaps found", func(t *testing.T) {
		tr := &mockTriager{res: triage.Result{
			Relevance: commonModels.Relevant,
			Outcome:   jobModel.OutcomeGapsFound,
			Gaps:      []commonModels.ComplianceGap{{Title: "LDAR overdue", Citation: "SOR/2018-66", Severity: commonModels.SeverityHigh}},
			Report:    "# Compliance Triage Report",
		}}
		s, _ := NewServer(&Ports{Search: &mockSearch{}, Triager: tr})

		_, out, err := s.handleTriage(ctx, nil, TriageInput{Text: "site audit", DocumentName: "audit.txt"})
		require.NoError(t, err)
		assert.Equal(t, "audit.txt", tr.lastDoc.Name)
		assert.Equal(t, "GAPS_FOUND", out.Outcome)
		require.Len(t, out.Gaps, 1)
		assert.Equal(t, "High", out.Gaps[0].Severity)
		assert.True(t, strings.HasPrefix(out.Report, "# Compliance"))
	})

	t.Run("default document name", func(t *testing.T) {
		tr := &mockTriager{res: triage.Result{Outcome: jobModel.OutcomeNotRelevant}}
		s, _ := NewServer(&Ports{Search: &mockSearch{}, Triager: tr})
		_, out, err := s.handleTriage(ctx, nil, TriageInput{Text: "football scores"})
		require.NoError(t, err)
		assert.Equal(t, "mcp_document", out.DocumentName)
		assert.Empty(t, out.Gaps)
	})

	t.Run("analysis failure is an outcome", func(t *testing.T) {
		tr := &mockTriager{
			res: triage.Result{Outcome: jobModel.OutcomeAnalysisFailed, Error: "invalid severity"},
			err: errors.New("analysing: invalid severity"),
		}
		s, _ := NewServer(&Ports{Search: &mockSearch{}, Triager: tr})
		_, out, err := s.handleTriage(ctx, nil, TriageInput{Text: "audit"})
		require.NoError(t, err)
		assert.Equal(t, "ANALYSIS_FAILED", out.Outcome)
		assert.Equal(t, "invalid severity", out.Error)
	})

	t.Run("other failures are tool errors", func(t *testing.T) {
		s, _ := NewServer(&Ports{Search: &mockSearch{}, Triager: &mockTriager{err: errors.New("classifier down")}})
		_, _, err := s.handleTriage(ctx, nil, TriageInput{Text: "audit"})
		assert.Error(t, err)
	})

	t.Run("empty text", func(t *testing.T) {
		s, _ := NewServer(&Ports{Search: &mockSearch{}, Triager: &mockTriager{}})
		_, _, err := s.handleTriage(ctx, nil, TriageInput{Text: "  "})
		assert.ErrorIs(t, err, errEmptyText)
	})
}
