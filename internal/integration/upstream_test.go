package integration

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // Upstream digests are SHA-1.
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// upstream is an httptest server standing in for the catalog, library,
// asset and runtime hosts.
type upstream struct {
	*httptest.Server

	mu     sync.Mutex
	bodies map[string][]byte
	hits   map[string]int
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{bodies: make(map[string][]byte), hits: make(map[string]int)}
	u.Server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.Close)

	return u
}

func (u *upstream) handle(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.hits[r.URL.Path]++
	body, ok := u.bodies[r.URL.Path]
	u.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	_, _ = w.Write(body)
}

// serve publishes body at path and returns its absolute URL.
func (u *upstream) serve(path string, body []byte) string {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.bodies[path] = body

	return u.URL + path
}

// total returns the number of requests for the given paths.
func (u *upstream) total(paths ...string) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	var n int
	for _, p := range paths {
		n += u.hits[p]
	}

	return n
}

// filePaths lists every published path that is a file download rather than
// a document re-read on each run.
func (u *upstream) filePaths(documents ...string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()

	skip := make(map[string]bool, len(documents))
	for _, d := range documents {
		skip[d] = true
	}

	var out []string

	for p := range u.bodies {
		if !skip[p] {
			out = append(out, p)
		}
	}

	return out
}

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b) //nolint:gosec // Test helper.

	return hex.EncodeToString(sum[:])
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return data
}

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, content := range entries {
		ew, err := w.Create(name)
		require.NoError(t, err)

		_, err = ew.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}
