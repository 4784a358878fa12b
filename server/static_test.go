package server

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeStatic(t *testing.T, env *testEnv, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(env.cfg.StaticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.cfg.StaticDir, name), []byte(content), 0o644))
}

func TestIndexServedWithoutCaching(t *testing.T) {
	env := newTestEnv(t)
	writeStatic(t, env, "index.html", "<html>app</html>")

	w := env.doJSON(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app")
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
}

func TestStaticExtensionAllowlist(t *testing.T) {
	env := newTestEnv(t)
	writeStatic(t, env, "app.js", "console.log('hi')")
	writeStatic(t, env, "secrets.env", "APP_PASSWORD=x")

	w := env.doJSON(t, http.MethodGet, "/app.js", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Present on disk but not a servable type.
	w = env.doJSON(t, http.MethodGet, "/secrets.env", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.doJSON(t, http.MethodGet, "/missing.css", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRepoFilesAndLoad(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.cfg.ArchiveDir, 0o755))

	book := excelize.NewFile()
	require.NoError(t, book.SetCellValue("Sheet1", "A1", "Region"))
	require.NoError(t, book.SetCellValue("Sheet1", "A2", "West"))
	require.NoError(t, book.SaveAs(filepath.Join(env.cfg.ArchiveDir, "sales.xlsx")))
	require.NoError(t, os.WriteFile(filepath.Join(env.cfg.ArchiveDir, "notes.txt"), []byte("skip"), 0o644))

	w := env.doJSON(t, http.MethodGet, "/api/repo/files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])
	file := body["files"].([]any)[0].(map[string]any)
	assert.Equal(t, "sales.xlsx", file["name"])

	w = env.doJSON(t, http.MethodGet, "/api/repo/load/sales.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Contains(t, body["content"], "Region")
	assert.Contains(t, body["content"], "West")

	w = env.doJSON(t, http.MethodGet, "/api/repo/load/notes.txt", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.doJSON(t, http.MethodGet, "/api/repo/load/ghost.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
