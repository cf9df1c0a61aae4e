// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, data string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return &buf
}

func gunzip(t *testing.T, body io.Reader) string {
	t.Helper()
	zr, err := gzip.NewReader(body)
	require.NoError(t, err)
	defer zr.Close()
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

// echo answers with the request body prefixed by "echo: ".
var echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append([]byte("echo: "), body...))
})

func TestGZip(t *testing.T) {
	tests := []struct {
		name            string
		acceptEncoding  string
		contentEncoding string
		body            io.Reader
		wantStatus      int
		wantGzipped     bool
		wantBody        string
	}{
		{
			name:           "compresses when the client accepts gzip",
			acceptEncoding: "gzip",
			body:           strings.NewReader(`{"baseVersion":3}`),
			wantStatus:     http.StatusOK,
			wantGzipped:    true,
			wantBody:       `echo: {"baseVersion":3}`,
		},
		{
			name:           "accept-encoding list with quality values",
			acceptEncoding: "deflate, gzip;q=1.0, br",
			body:           strings.NewReader("x"),
			wantStatus:     http.StatusOK,
			wantGzipped:    true,
			wantBody:       "echo: x",
		},
		{
			name:       "plain response without accept-encoding",
			body:       strings.NewReader("plain"),
			wantStatus: http.StatusOK,
			wantBody:   "echo: plain",
		},
		{
			name:            "gzipped request body is decoded",
			contentEncoding: "gzip",
			body:            gzipped(t, `{"name":"Dinner"}`),
			wantStatus:      http.StatusOK,
			wantBody:        `echo: {"name":"Dinner"}`,
		},
		{
			name:            "gzip both ways",
			acceptEncoding:  "gzip",
			contentEncoding: "gzip",
			body:            gzipped(t, strings.Repeat("member ", 500)),
			wantStatus:      http.StatusOK,
			wantGzipped:     true,
			wantBody:        "echo: " + strings.Repeat("member ", 500),
		},
		{
			name:            "broken gzip request body",
			contentEncoding: "gzip",
			body:            strings.NewReader("not gzip"),
			wantStatus:      http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bills/sync", tt.body)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			if tt.contentEncoding != "" {
				req.Header.Set("Content-Encoding", tt.contentEncoding)
			}
			rr := httptest.NewRecorder()

			withGZip(echo).ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody == "" {
				return
			}
			if tt.wantGzipped {
				assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
				assert.Equal(t, tt.wantBody, gunzip(t, rr.Body))
				return
			}
			assert.Empty(t, rr.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.wantBody, rr.Body.String())
		})
	}
}

func TestGZip_RequestHeaderRemovedAfterDecoding(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Content-Encoding")
	})

	req := httptest.NewRequest(http.MethodPost, "/bills/sync", gzipped(t, "{}"))
	req.Header.Set("Content-Encoding", "gzip")

	withGZip(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, seen)
}

func TestGZip_ImplicitStatusSetsEncoding(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("1.2.3"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	withGZip(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Equal(t, "1.2.3", gunzip(t, rr.Body))
}

func TestGZip_UntouchedResponseStaysEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	withGZip(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rr, req)

	assert.Zero(t, rr.Body.Len())
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
}

func TestGZip_SkipsWebsocketUpgrade(t *testing.T) {
	var got http.ResponseWriter
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = w
	})

	req := httptest.NewRequest(http.MethodGet, "/bills/b1/events", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	rr := httptest.NewRecorder()

	withGZip(next).ServeHTTP(rr, req)

	_, wrapped := got.(*gzipResponseWriter)
	assert.False(t, wrapped)
}

func TestGZip_ConcurrentRequests(t *testing.T) {
	handler := withGZip(echo)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/bills/sync", strings.NewReader("payload"))
			req.Header.Set("Accept-Encoding", "gzip")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			zr, err := gzip.NewReader(rr.Body)
			if !assert.NoError(t, err) {
				return
			}
			out, err := io.ReadAll(zr)
			assert.NoError(t, err)
			assert.Equal(t, "echo: payload", string(out))
		}()
	}
	wg.Wait()
}

func TestWrappedReadCloser_Close(t *testing.T) {
	closed := false
	wrapped := &wrappedReadCloser{Reader: strings.NewReader("x"), OnClose: func() { closed = true }}

	assert.NoError(t, wrapped.Close())
	assert.True(t, closed)

	assert.NoError(t, (&wrappedReadCloser{Reader: strings.NewReader("x")}).Close())
}
