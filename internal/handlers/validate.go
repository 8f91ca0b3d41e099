package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for item form fields.
const (
	maxTitleLen    = 100
	maxBodyLen     = 10_000
	maxKeywordsLen = 200
	maxPrice       = 10_000_000
)

// validateItemForm checks item form inputs and returns the first error
// message found, or "" when the input is acceptable.
func validateItemForm(title, body string, price int) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "タイトルを入力してください。"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "タイトルが長すぎます（100文字以内）。"
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "本文が長すぎます（10,000文字以内）。"
	}
	if price < 0 || price > maxPrice {
		return "価格が範囲外です。"
	}
	return ""
}

// validateKeywords checks the AI-assist keyword inputs. The limit is on
// the combined length of all keywords.
func validateKeywords(keywords []string) string {
	total := 0
	for _, k := range keywords {
		total += utf8.RuneCountInString(k)
	}
	if total > maxKeywordsLen {
		return "キーワードが長すぎます（200文字以内）。"
	}
	return ""
}
