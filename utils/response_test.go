package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithJSON(rec, http.StatusCreated, map[string]interface{}{"id": "42"}, "Created")

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp ApiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("envelope status = %d, want 201", resp.Status)
	}
	if resp.Message != "Created" {
		t.Errorf("message = %q, want Created", resp.Message)
	}
}

func TestRespondWithJSONDefaultsData(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithJSON(rec, http.StatusOK, nil, "ok")

	var resp ApiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// data mora da bude objekat, ne null
	if _, ok := resp.Data.(map[string]interface{}); !ok {
		t.Errorf("data = %T, want object", resp.Data)
	}
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, NewApiError(http.StatusConflict, "Username or email already exists"))

	var resp ApiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.Message != "Username or email already exists" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRespondWithErrorFallsBackTo500(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, errors.New("mongo: no documents in result"))

	var resp ApiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	// Neočekivane greške ne smeju da procure klijentu
	if resp.Message != "Something went wrong" {
		t.Errorf("message = %q, want generic", resp.Message)
	}
}
