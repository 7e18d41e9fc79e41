package httpnlp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
)

func TestAnalyzeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Abt Otto kam.", req.Text)
		assert.Equal(t, "de", req.Lang)

		_, _ = io.WriteString(w, `{
			"sentences": ["Abt Otto kam."],
			"entities": [{"text": "Otto", "label": "PER", "sentence": 0}],
			"tokens": [{"text": "Abt", "pos": "NOUN", "sentence": 0}]
		}`)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/", Token: "secret"}
	a, err := c.Analyze(context.Background(), "Abt Otto kam.")
	require.NoError(t, err)
	require.Len(t, a.Entities, 1)
	assert.Equal(t, "Otto", a.Entities[0].Text)
	assert.Equal(t, "PER", a.Entities[0].Label)
	assert.Equal(t, "Abt Otto kam.", a.SentenceText(a.Entities[0].Sentence))
	require.Len(t, a.Tokens, 1)
	assert.Equal(t, "NOUN", a.Tokens[0].POS)
}

func TestAnalyzeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Analyze(context.Background(), "x")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "model not loaded", se.Body)
	assert.ErrorIs(t, err, internalerr.ErrBackendUnavailable)
}

func TestAnalyzeClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Analyze(context.Background(), "x")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.False(t, errors.Is(err, internalerr.ErrBackendUnavailable))
	assert.Equal(t, "httpnlp: status 400", se.Error())
}

func TestAnalyzeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Analyze(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "httpnlp: decode response"))
}

func TestAnalyzeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := (&Client{BaseURL: url}).Analyze(context.Background(), "x")
	assert.ErrorIs(t, err, internalerr.ErrBackendUnavailable)
}

func TestAnalyzeRequiresBaseURL(t *testing.T) {
	_, err := (&Client{}).Analyze(context.Background(), "x")
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
	assert.ErrorIs(t, (&Client{}).Ping(context.Background()), internalerr.ErrInvalidConfig)
}

func TestPing(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	require.NoError(t, c.Ping(context.Background()))

	healthy.Store(false)
	assert.ErrorIs(t, c.Ping(context.Background()), internalerr.ErrBackendUnavailable)
}
