package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusNotFound, "Pastry not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Pastry not found" {
		t.Errorf("body = %v", body)
	}
}

func TestSendResponse(t *testing.T) {
	w := httptest.NewRecorder()
	SendResponse(w, http.StatusOK, M{"count": 3}, "reloaded", nil)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "reloaded" || body["status"] != float64(http.StatusOK) {
		t.Errorf("body = %v", body)
	}
	if _, present := body["error"]; present {
		t.Error("nil error must not produce an error field")
	}

	w = httptest.NewRecorder()
	SendResponse(w, http.StatusInternalServerError, nil, "failed", errors.New("boom"))
	body = nil
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "boom" {
		t.Errorf("body = %v", body)
	}
}
