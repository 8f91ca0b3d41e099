// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// generateIntroRequest carries the staff name and keywords for intro
// text generation.
type generateIntroRequest struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// GenerateIntroText produces a staff introduction from a name and
// keywords using the configured AI provider. The staffs form controller
// carries the generation state so a second request while one is running
// is refused.
func (h *Admin) GenerateIntroText(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r, "staffs")
	if ctrl == nil {
		writeJSONError(w, http.StatusUnauthorized, "no session")
		return
	}

	var req generateIntroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	keywords := normalizeKeywords(req.Keywords)
	if msg := validateKeywords(keywords); msg != "" {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	ctrl.SetFields(req.Name, ctrl.Body())
	ctrl.SetKeywords(keywords)

	text, err := ctrl.GenerateIntro(r.Context())
	if err != nil {
		slog.Warn("intro generation failed", "error", err)
		writeJSONError(w, statusForFormError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// normalizeKeywords trims each submitted keyword, splitting any element
// the client left comma- or space-separated, and drops empties.
func normalizeKeywords(raw []string) []string {
	var out []string
	for _, k := range raw {
		out = append(out, splitKeywords(k)...)
	}
	return out
}

// splitKeywords breaks a free-form keyword string on commas (ASCII and
// Japanese) and whitespace, dropping empties.
func splitKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '、' || r == '，' || r == ' ' || r == '　' || r == '\n' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
