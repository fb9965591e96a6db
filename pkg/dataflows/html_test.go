package dataflows

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"", ""},
		{"   ", ""},
		{"plain text", "plain text"},
		{"AT&amp;T &lt;b&gt;beats&lt;/b&gt;", "AT&T beats"},
		{"<div>line one</div>\n\n<div>line\ttwo</div>", "line one line two"},
		{`<a href="https://example.com">Apple hits record</a>&nbsp;&nbsp;<font color="#6f6f6f">Reuters</font>`, "Apple hits record Reuters"},
		{"<script>alert(1)</script>safe", "safe"},
		{"Q3 &amp;lt;b&amp;gt; guidance", "Q3 &lt;b&gt; guidance"},
		{"S&amp;amp;P 500", "S&amp;P 500"},
		{"<p>Tesla &amp; SpaceX</p>", "Tesla & SpaceX"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripHTMLTagsFallback(t *testing.T) {
	if got := stripHTMLTags("<b>Apple</b>  &amp; co"); got != "Apple &amp; co" {
		t.Errorf("stripHTMLTags must not decode, got %q", got)
	}
}
