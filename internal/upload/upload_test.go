package upload_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/mutker/diagctl/internal/report"
	"codeberg.org/mutker/diagctl/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSuccess(t *testing.T) {
	var (
		gotContentType string
		gotBody        []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := report.Report{"status": "Good", "health_score": 100}
	err := upload.New(time.Second).Send(context.Background(), server.URL, r)
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, "Good", decoded["status"])
}

func TestSendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := upload.New(time.Second).Send(context.Background(), server.URL, report.Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSendUnreachableEndpoint(t *testing.T) {
	err := upload.New(time.Second).Send(context.Background(), "http://127.0.0.1:1/ingest", report.Report{})
	require.Error(t, err)
}

func TestSendCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := upload.New(time.Second).Send(ctx, server.URL, report.Report{})
	require.Error(t, err)
}
