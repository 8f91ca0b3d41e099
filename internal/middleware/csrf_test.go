// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFSetsCookieOnFirstVisit(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var found bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			found = true
			if c.Value == "" {
				t.Error("cookie value should not be empty")
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Errorf("SameSite: got %v, want StrictMode", c.SameSite)
			}
			if c.HttpOnly {
				t.Error("cookie must be readable by JS for the fetch header")
			}
		}
	}
	if !found {
		t.Fatal("CSRF cookie not set")
	}
}

func TestCSRFRejectsMutationWithoutToken(t *testing.T) {
	handler := CSRF(okHandler())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/admin/api/staffs/items", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-abc"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("%s without token: got %d, want 403", method, rr.Code)
		}
	}
}

func TestCSRFAcceptsHeaderToken(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/admin/api/staffs/reorder", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-abc"})
	req.Header.Set(CSRFHeaderName, "token-abc")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("matching header token: got %d, want 200", rr.Code)
	}
}

func TestCSRFAcceptsFormFieldToken(t *testing.T) {
	handler := CSRF(okHandler())

	form := strings.NewReader(CSRFFormField + "=token-abc")
	req := httptest.NewRequest(http.MethodPost, "/admin/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-abc"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("matching form token: got %d, want 200", rr.Code)
	}
}

func TestCSRFRejectsMismatchedToken(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-abc"})
	req.Header.Set(CSRFHeaderName, "token-wrong")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("mismatched token: got %d, want 403", rr.Code)
	}
}

func TestGetCSRFToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCSRFToken(req); got != "" {
		t.Errorf("no cookie: got %q", got)
	}

	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
	if got := GetCSRFToken(req); got != "tok" {
		t.Errorf("got %q, want tok", got)
	}
}
