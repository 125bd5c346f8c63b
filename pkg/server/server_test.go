// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package server_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carvel.dev/inputmodel/pkg/cmd/ui"
	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/model"
	"carvel.dev/inputmodel/pkg/orderedmap"
	"carvel.dev/inputmodel/pkg/server"
	"github.com/stretchr/testify/require"
)

func TestGetModel(t *testing.T) {
	srv, _ := newTestServer(t, copyFixture(t, "model"))

	resp := srv.get(t, server.ModelPath)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	require.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "no-cache, private, max-age=0", resp.Header().Get("Cache-Control"))

	var m model.Model
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &m))
	require.Equal(t, []string{"cloudConfig.yml", "data/servers.yml"}, m.FileInfo.Files)
	require.Equal(t, []string{"product", "cloud", "servers"}, m.InputModel.Keys())
}

func TestPostModelDryRunLeavesDiskUntouched(t *testing.T) {
	dir := copyFixture(t, "model")
	srv, _ := newTestServer(t, dir)

	m := srv.load(t)
	addServer(t, m, "compute2")

	before := readFile(t, dir, "data/servers.yml")

	resp := srv.post(t, server.ModelPath+"?dryRun=true", m)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	changes := decodeChanges(t, resp)
	require.Equal(t, "CHANGED", changes["data/servers.yml"].Status)
	require.Equal(t, "IGNORED", changes["cloudConfig.yml"].Status)
	require.Equal(t, before, readFile(t, dir, "data/servers.yml"))
}

func TestPostModelWrites(t *testing.T) {
	dir := copyFixture(t, "model")
	srv, _ := newTestServer(t, dir)

	m := srv.load(t)
	addServer(t, m, "compute2")

	resp := srv.post(t, server.ModelPath, m)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Equal(t, "CHANGED", decodeChanges(t, resp)["data/servers.yml"].Status)

	require.Contains(t, readFile(t, dir, "data/servers.yml"), "id: compute2")

	// second identical write is a no-op
	resp = srv.post(t, server.ModelPath, srv.load(t))
	require.Equal(t, http.StatusOK, resp.Code)
	for name, change := range decodeChanges(t, resp) {
		require.Equal(t, "IGNORED", change.Status, name)
	}
}

func TestErrorStatuses(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		srv, _ := newTestServer(t, filepath.Join(t.TempDir(), "missing"))
		resp := srv.get(t, server.ModelPath)
		require.Equal(t, http.StatusNotFound, resp.Code)
		require.Contains(t, resp.Body.String(), `"error":`)
	})

	t.Run("conflicting documents", func(t *testing.T) {
		srv, _ := newTestServer(t, copyFixture(t, "conflict"))
		resp := srv.get(t, server.ModelPath)
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newTestServer(t, copyFixture(t, "model"))
		resp := srv.do(t, http.MethodPost, server.ModelPath, strings.NewReader(`{"inputModel": [}`))
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		srv := server.NewServer(server.ServerOpts{
			ModelDir:     copyFixture(t, "model"),
			MaxBodyBytes: 16,
			UI:           ui.NewCustomWriterTTY(false, io.Discard, io.Discard),
		})
		resp := testServer{srv.Mux()}.do(t, http.MethodPost, server.ModelPath,
			strings.NewReader(`{"inputModel": {"product": {"version": 2}}}`))
		require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
		require.Contains(t, resp.Body.String(), `"error":`)
	})

	t.Run("invalid dryRun", func(t *testing.T) {
		srv, _ := newTestServer(t, copyFixture(t, "model"))
		resp := srv.do(t, http.MethodPost, server.ModelPath+"?dryRun=maybe", strings.NewReader(`{}`))
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unsupported method", func(t *testing.T) {
		srv, _ := newTestServer(t, copyFixture(t, "model"))
		resp := srv.do(t, http.MethodPut, server.ModelPath, nil)
		require.Equal(t, http.StatusMethodNotAllowed, resp.Code)
		require.Equal(t, "GET, POST, OPTIONS", resp.Header().Get("Allow"))
	})
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("x: %w", files.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", document.ErrMalformed), http.StatusUnprocessableEntity},
		{fmt.Errorf("x: %w", model.ErrLoadConflict), http.StatusConflict},
		{fmt.Errorf("x: %w", model.ErrUnsupportedVersion), http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, server.StatusFor(tc.err), tc.err.Error())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, copyFixture(t, "model"))

	resp := srv.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "ok", resp.Body.String())

	srv.get(t, server.ModelPath)

	resp = srv.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `inputmodel_api_requests_total{operation="load",status="200"} 1`)
}

func TestServerLogsErrors(t *testing.T) {
	srv, stderr := newTestServer(t, filepath.Join(t.TempDir(), "missing"))
	srv.get(t, server.ModelPath)
	require.Contains(t, stderr.String(), "GET /api/v2/model: 404")
}

type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T, dir string) (testServer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	srv := server.NewServer(server.ServerOpts{
		ModelDir: dir,
		WriteOpts: model.WriteOpts{
			Names: model.SequentialNames{},
		},
		UI: ui.NewCustomWriterTTY(false, &stdout, &stderr),
	})
	return testServer{srv.Mux()}, &stderr
}

func (s testServer) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func (s testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return s.do(t, http.MethodGet, path, nil)
}

func (s testServer) post(t *testing.T, path string, m *model.Model) *httptest.ResponseRecorder {
	t.Helper()
	bs, err := json.Marshal(m)
	require.NoError(t, err)
	return s.do(t, http.MethodPost, path, bytes.NewReader(bs))
}

func (s testServer) load(t *testing.T) *model.Model {
	t.Helper()
	resp := s.get(t, server.ModelPath)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var m model.Model
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &m))
	return &m
}

type changeResponse struct {
	Status string `json:"status"`
}

func decodeChanges(t *testing.T, resp *httptest.ResponseRecorder) map[string]changeResponse {
	t.Helper()
	var changes map[string]changeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &changes))
	return changes
}

func addServer(t *testing.T, m *model.Model, id string) {
	t.Helper()
	val, _ := m.InputModel.Get("servers")
	items, ok := val.([]interface{})
	require.True(t, ok)

	item := orderedmap.NewMap()
	item.Set("id", id)
	item.Set("role", "COMPUTE-ROLE")
	m.InputModel.Set("servers", append(items, item))
}

func copyFixture(t *testing.T, name string) string {
	t.Helper()

	src := filepath.Join("testdata", name)
	dst := t.TempDir()

	err := filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return os.MkdirAll(filepath.Join(dst, relPath), 0755)
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dst, relPath), bs, 0644)
	})
	require.NoError(t, err)
	return dst
}

func readFile(t *testing.T, dir, relPath string) string {
	t.Helper()
	bs, err := os.ReadFile(filepath.Join(dir, relPath))
	require.NoError(t, err)
	return string(bs)
}
