package htmlutils

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Author: Jane Doe\n  We ran  an experiment.",
			expected: "Author: Jane Doe\n  We ran  an experiment.",
		},
		{
			name:     "inline tags removed",
			input:    "We <b>tested</b> the <i>hypothesis</i>.",
			expected: "We tested the hypothesis.",
		},
		{
			name:     "block tags become lines",
			input:    "<p>Author: Jane Doe</p><p>We measured latency.</p>",
			expected: "Author: Jane Doe\n\nWe measured latency.",
		},
		{
			name:     "br splits lines",
			input:    "From: Sam<br/>To: Jane",
			expected: "From: Sam\nTo: Jane",
		},
		{
			name:     "entities decoded",
			input:    "R&amp;D results &gt; baseline",
			expected: "R&D results > baseline",
		},
		{
			name:     "scripts styles and comments dropped",
			input:    "<html><head><title>x</title></head><style>p{}</style><!-- hidden --><script>var a;</script>Body</html>",
			expected: "Body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.expected {
				t.Errorf("PlainText() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetTagName(t *testing.T) {
	tests := map[string]string{
		"<a href='x'>": "a",
		"</b>":         "b",
		"<br/>":        "br",
		"text":         "",
	}

	for in, want := range tests {
		if got := GetTagName(in); got != want {
			t.Errorf("GetTagName(%q) = %q, want %q", in, got, want)
		}
	}
}
