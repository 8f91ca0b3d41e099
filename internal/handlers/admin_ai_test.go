package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"salonpress/internal/forms"
	"salonpress/internal/live"
	"salonpress/internal/middleware"
	"salonpress/internal/session"
)

type fakeGenerator struct {
	name     string
	keywords []string
}

func (f *fakeGenerator) IntroText(ctx context.Context, name string, keywords []string) (string, error) {
	f.name = name
	f.keywords = keywords
	return "ネイルとカラーが得意なスタイリストです。", nil
}

func introRouter(gen forms.TextGenerator) (http.Handler, *Admin) {
	registry := forms.NewRegistry(func(collection string) *forms.Controller {
		return forms.NewController(newFakeWriter(), nil, gen, collection, "studio-eight")
	})
	admin := NewAdmin(nil,
		map[string]*live.Synchronizer{"staffs": live.New(&fakeSource{}, nil, "staffs", "studio-eight")},
		nil, nil, nil, registry, "studio-eight")

	r := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sess := &session.Data{ID: "sess-1", TwoFADone: true}
		ctx := context.WithValue(req.Context(), middleware.SessionKey, sess)
		admin.GenerateIntroText(w, req.WithContext(ctx))
	})
	return r, admin
}

func TestGenerateIntroText(t *testing.T) {
	gen := &fakeGenerator{}
	router, _ := introRouter(gen)

	body, _ := json.Marshal(generateIntroRequest{Name: "山田 花子", Keywords: []string{"ネイル", "カラー パーマ"}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate-intro-text", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["text"] == "" {
		t.Error("empty text in response")
	}
	if gen.name != "山田 花子" {
		t.Errorf("generator received name %q", gen.name)
	}
	wantKeywords := []string{"ネイル", "カラー", "パーマ"}
	if !reflect.DeepEqual(gen.keywords, wantKeywords) {
		t.Errorf("generator received keywords %v, want %v", gen.keywords, wantKeywords)
	}
}

func TestGenerateIntroTextKeywordArrayBody(t *testing.T) {
	gen := &fakeGenerator{}
	router, _ := introRouter(gen)

	body := []byte(`{"name":"山田 花子","keywords":["ネイル","カラー"]}`)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate-intro-text", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if want := []string{"ネイル", "カラー"}; !reflect.DeepEqual(gen.keywords, want) {
		t.Errorf("generator received keywords %v, want %v", gen.keywords, want)
	}
}

func TestGenerateIntroTextRequiresKeywords(t *testing.T) {
	router, _ := introRouter(&fakeGenerator{})

	body, _ := json.Marshal(generateIntroRequest{Name: "山田 花子", Keywords: []string{" ", ""}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate-intro-text", bytes.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"ネイル", "カラー"}, []string{"ネイル", "カラー"}},
		{[]string{" ネイル ", "カラー、パーマ"}, []string{"ネイル", "カラー", "パーマ"}},
		{[]string{"", "  "}, nil},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := normalizeKeywords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("normalizeKeywords(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"ネイル、カラー", []string{"ネイル", "カラー"}},
		{"one　two\tthree", []string{"one", "two", "three"}},
		{" , 、 ", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := splitKeywords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitKeywords(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
