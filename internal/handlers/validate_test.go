package handlers

import (
	"strings"
	"testing"
)

func TestValidateItemForm(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		body    string
		price   int
		wantErr bool
	}{
		{"valid", "山田 花子", "スタイリスト歴10年。", 0, false},
		{"empty title", "", "body", 0, true},
		{"whitespace title", "   ", "body", 0, true},
		{"title at limit", strings.Repeat("あ", 100), "", 0, false},
		{"title over limit", strings.Repeat("あ", 101), "", 0, true},
		{"body over limit", "title", strings.Repeat("あ", 10_001), 0, true},
		{"negative price", "title", "", -1, true},
		{"price at limit", "title", "", 10_000_000, false},
		{"price over limit", "title", "", 10_000_001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateItemForm(tt.title, tt.body, tt.price)
			if (msg != "") != tt.wantErr {
				t.Errorf("validateItemForm(%q, len(body)=%d, %d) = %q, wantErr=%v",
					tt.title, len(tt.body), tt.price, msg, tt.wantErr)
			}
		})
	}
}

func TestValidateKeywords(t *testing.T) {
	if msg := validateKeywords([]string{"ネイル", "カラー"}); msg != "" {
		t.Errorf("short keywords rejected: %q", msg)
	}
	if msg := validateKeywords([]string{strings.Repeat("あ", 150), strings.Repeat("あ", 51)}); msg == "" {
		t.Error("over-limit keywords accepted")
	}
}
