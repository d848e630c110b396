package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    []string        `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return env
}

func assertEnvelope(t *testing.T, rr *httptest.ResponseRecorder, code int, status string, messages ...string) envelope {
	t.Helper()
	if rr.Code != code {
		t.Fatalf("expected %d, got %d body=%s", code, rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Status != status || env.StatusCode != code {
		t.Fatalf("unexpected envelope status=%q code=%d", env.Status, env.StatusCode)
	}
	if diff := cmp.Diff(messages, env.Message); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
	return env
}
