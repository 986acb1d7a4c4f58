package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventrsvp/internal/delivery/http/helpers"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testEventID = "5b0c7a4e-9d55-4c1e-8a44-3f2f5b1a0c11"

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if data != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Error
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }
