package googleEmbedding

import (
	"context"
	"testing"
)

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(context.Background(), "", "gemini-embedding-001", nil); err == nil {
		t.Error("expected error for empty api key")
	}
}

func TestGetContent(t *testing.T) {
	contents := getContent([]string{"flare", "vent"})
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[1].Parts[0].Text != "vent" {
		t.Errorf("unexpected content %q", contents[1].Parts[0].Text)
	}
}
