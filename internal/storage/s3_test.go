// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"io"
	"testing"
)

func testClient(t *testing.T, publicURL string) *Client {
	t.Helper()
	c, err := New("https://s3.example.com/", "auto", "key", "secret", "salon-public", publicURL)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("client is nil despite full configuration")
	}
	return c
}

func TestNewUnconfigured(t *testing.T) {
	c, err := New("", "auto", "", "", "bucket", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Error("missing endpoint/credentials must yield a nil client")
	}
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		want      string
	}{
		{"path style", "", "https://s3.example.com/salon-public/staffs/public/s/a.jpg"},
		{"cdn", "https://cdn.example.com/", "https://cdn.example.com/staffs/public/s/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, tt.publicURL)
			if got := c.FileURL("staffs/public/s/a.jpg"); got != tt.want {
				t.Errorf("FileURL: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractKey(t *testing.T) {
	c := testClient(t, "https://cdn.example.com")

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"cdn url", "https://cdn.example.com/news/public/s/x.jpg", "news/public/s/x.jpg", true},
		{"cache buster stripped", "https://cdn.example.com/news/public/s/x.jpg?v=abc-123", "news/public/s/x.jpg", true},
		{"path style url", "https://s3.example.com/salon-public/news/public/s/x.mp4?v=1", "news/public/s/x.mp4", true},
		{"foreign url", "https://elsewhere.example.com/x.jpg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ExtractKey(tt.url)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ExtractKey(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestProgressReader(t *testing.T) {
	data := make([]byte, 1000)
	var got []int
	pr := &progressReader{
		r:      bytes.NewReader(data),
		total:  1000,
		report: func(pct int) { got = append(got, pct) },
	}

	buf := make([]byte, 100)
	for {
		if _, err := pr.Read(buf); err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
	}

	if len(got) != 10 {
		t.Fatalf("reports: got %v", got)
	}
	for i, pct := range got {
		if pct != (i+1)*10 {
			t.Fatalf("non-monotonic or duplicated reports: %v", got)
		}
	}
	if got[len(got)-1] != 100 {
		t.Errorf("final report must be 100, got %v", got)
	}
}

func TestProgressReaderRoundsAndCaps(t *testing.T) {
	data := make([]byte, 3)
	var got []int
	pr := &progressReader{
		r:      bytes.NewReader(data),
		total:  3,
		report: func(pct int) { got = append(got, pct) },
	}

	buf := make([]byte, 2)
	for {
		if _, err := pr.Read(buf); err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
	}

	// 2/3 rounds to 67, then 3/3 is exactly 100
	if len(got) != 2 || got[0] != 67 || got[1] != 100 {
		t.Errorf("reports: got %v, want [67 100]", got)
	}
}
