package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"heading", "## お知らせ", "<h2>お知らせ</h2>"},
		{"emphasis", "**大切**なお知らせ", "<strong>大切</strong>"},
		{"hard wrap becomes br", "一行目\n二行目", "<br>"},
		{"autolink", "https://example.com", `<a href="https://example.com"`},
		{"strikethrough", "~~旧価格~~", "<del>旧価格</del>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.source)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ToHTML(%q) = %q, want substring %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestToHTMLPlainText(t *testing.T) {
	got, err := ToHTML("よろしくお願いします。")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "<p>よろしくお願いします。</p>") {
		t.Errorf("plain text should render as a paragraph: %q", got)
	}
}
