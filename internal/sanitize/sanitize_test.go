package sanitize

import (
	"strings"
	"testing"
)

func TestHTML_StripsScripts(t *testing.T) {
	got := HTML(`<p onclick="x()">hi<script>alert(1)</script></p><a href="javascript:alert(1)">x</a>`)
	for _, bad := range []string{"<script", "onclick", "javascript:"} {
		if strings.Contains(got, bad) {
			t.Errorf("expected %q removed, got %s", bad, got)
		}
	}
	if !strings.Contains(got, "hi") {
		t.Errorf("expected text kept, got %s", got)
	}
}

func TestHTML_Empty(t *testing.T) {
	if HTML("") != "" {
		t.Error("expected empty output")
	}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "formatting",
			input: "**Heavy** sofa, _second floor_",
			want:  []string{"<strong>Heavy</strong>", "<em>second floor</em>"},
		},
		{
			name:    "raw html stripped keeps text",
			input:   "<script>alert(1)</script> gate code 1234",
			want:    []string{"gate code 1234"},
			notWant: []string{"<script>", "alert(1)"},
		},
		{
			name:    "inline html loses handlers",
			input:   `<b onclick="steal()">urgent</b> call ahead`,
			want:    []string{"<b>urgent</b>", "call ahead"},
			notWant: []string{"onclick", "steal()"},
		},
		{
			name:    "links get nofollow",
			input:   "[map](https://maps.example/x)",
			want:    []string{`rel="nofollow`, `href="https://maps.example/x"`},
			notWant: []string{"javascript:"},
		},
		{
			name:  "list",
			input: "- fridge\n- mattress",
			want:  []string{"<li>fridge</li>", "<li>mattress</li>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Markdown(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("expected %q in %s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("did not expect %q in %s", nw, got)
				}
			}
		})
	}
}
