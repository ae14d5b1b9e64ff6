package utils

import "testing"

func TestGetDeterministicUUID(t *testing.T) {
	a := GetDeterministicUUID("SOR-2018-66.pdf", "Section 6 LDAR")
	b := GetDeterministicUUID("SOR-2018-66.pdf", "Section 6 LDAR")
	c := GetDeterministicUUID("SOR-2018-66.pdf", "Section 8 pneumatics")
	if a != b {
		t.Errorf("expected stable id, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different ids for different text")
	}
	//part boundaries matter
	if GetDeterministicUUID("ab", "c") == GetDeterministicUUID("a", "bc") {
		t.Error("expected separator to keep parts distinct")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 3, "hel"},
		{"hello", 10, "hello"},
		{"héllo", 2, "hé"},
		{"hello", 0, "hello"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q; want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
