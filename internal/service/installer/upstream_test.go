package installer

import (
	"context"
	"crypto/sha1" //nolint:gosec // Upstream digests are SHA-1.
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/metrics"
)

const (
	testRelease     = "1.20.1"
	testCatalogURL  = "https://meta.test/catalog.json"
	testAssetsURL   = "https://assets.test/"
	testRuntimeURL  = "https://meta.test/runtime.json"
	testImageURL    = "https://meta.test/jre/image.json"
	testJavaURL     = "https://meta.test/jre/bin/java"
	testComponent   = "java-runtime-gamma"
	sharedAssetBody = "shared sound"
)

var errNotServed = errors.New("not served")

// fakeUpstream serves fixed bodies, optionally slowly, and counts requests.
type fakeUpstream struct {
	mu     sync.Mutex
	bodies map[string][]byte
	delays map[string]time.Duration
	calls  map[string]int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		bodies: make(map[string][]byte),
		delays: make(map[string]time.Duration),
		calls:  make(map[string]int),
	}
}

// Fetch returns the registered body for url.
func (f *fakeUpstream) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	body, ok := f.bodies[url]
	delay := f.delays[url]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !ok {
		return nil, errNotServed
	}

	return body, nil
}

func (f *fakeUpstream) serve(url string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.bodies[url] = body
}

func (f *fakeUpstream) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[url]
}

// recordingExtractor records archives it was asked to unpack.
type recordingExtractor struct {
	mu       sync.Mutex
	archives []string
	dest     []string
}

// Extract records src and destDir.
func (e *recordingExtractor) Extract(src, destDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.archives = append(e.archives, src)
	e.dest = append(e.dest, destDir)

	return nil
}

func digest(body []byte) string {
	sum := sha1.Sum(body) //nolint:gosec // Test helper.

	return hex.EncodeToString(sum[:])
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return data
}

// library builds a descriptor library entry served by up.
func library(up *fakeUpstream, name, path string, rules []map[string]any) map[string]any {
	body := []byte("jar:" + name)
	url := "https://libraries.test/" + path
	up.serve(url, body)

	lib := map[string]any{
		"name": name,
		"downloads": map[string]any{
			"artifact": map[string]any{"path": path, "url": url, "sha1": digest(body), "size": len(body)},
		},
	}

	if rules != nil {
		lib["rules"] = rules
	}

	return lib
}

// serveRelease publishes a complete release on up and returns the
// number of applicable non-native libraries on Linux.
func serveRelease(t *testing.T, up *fakeUpstream) int {
	t.Helper()

	onlyOS := func(os string) []map[string]any {
		return []map[string]any{{"action": "allow", "os": map[string]any{"name": os}}}
	}

	libraries := []any{
		library(up, "com.example:core:1.0", "com/example/core/1.0/core-1.0.jar", nil),
		library(up, "com.example:win:1.0", "com/example/win/1.0/win-1.0.jar", onlyOS("windows")),
		library(up, "org.lwjgl:lwjgl:3.3.1:natives-linux", "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar", onlyOS("linux")),
		library(up, "com.example:core:1.0", "com/example/core/1.0/core-1.0.jar", nil),
		library(up, "com.example:all-but-mac:1.0", "com/example/all-but-mac/1.0/all-but-mac-1.0.jar",
			[]map[string]any{
				{"action": "allow"},
				{"action": "disallow", "os": map[string]any{"name": "osx"}},
			}),
	}

	sharedHash := digest([]byte(sharedAssetBody))
	up.serve(testAssetsURL+sharedHash[:2]+"/"+sharedHash, []byte(sharedAssetBody))

	lonelyBody := []byte("lonely texture")
	lonelyHash := digest(lonelyBody)
	up.serve(testAssetsURL+lonelyHash[:2]+"/"+lonelyHash, lonelyBody)

	index := mustJSON(t, map[string]any{"objects": map[string]any{
		"minecraft/sounds/a.ogg":   map[string]any{"hash": sharedHash, "size": len(sharedAssetBody)},
		"minecraft/sounds/b.ogg":   map[string]any{"hash": sharedHash, "size": len(sharedAssetBody)},
		"minecraft/textures/c.png": map[string]any{"hash": lonelyHash, "size": len(lonelyBody)},
	}})
	up.serve("https://meta.test/indexes/5.json", index)

	client := []byte("client jar")
	up.serve("https://meta.test/client.jar", client)

	descriptor := mustJSON(t, map[string]any{
		"id":         testRelease,
		"type":       "release",
		"mainClass":  "net.minecraft.client.main.Main",
		"assetIndex": map[string]any{"id": "5", "url": "https://meta.test/indexes/5.json", "sha1": digest(index)},
		"downloads": map[string]any{
			"client": map[string]any{"url": "https://meta.test/client.jar", "sha1": digest(client)},
		},
		"javaVersion": map[string]any{"component": testComponent, "majorVersion": 17},
		"libraries":   libraries,
	})
	up.serve("https://meta.test/1.20.1.json", descriptor)

	up.serve(testCatalogURL, mustJSON(t, map[string]any{
		"latest": map[string]any{"release": testRelease, "snapshot": testRelease},
		"versions": []any{map[string]any{
			"id": testRelease, "type": "release", "url": "https://meta.test/1.20.1.json", "sha1": digest(descriptor),
		}},
	}))

	serveRuntime(t, up)

	// core twice, lwjgl natives excluded, win excluded, all-but-mac included.
	return 3
}

// serveRuntime publishes a Linux runtime image with a directory, a file and
// a link pointing at the file.
func serveRuntime(t *testing.T, up *fakeUpstream) {
	t.Helper()

	java := []byte("#!/bin/java")
	up.serve(testJavaURL, java)

	up.serve(testRuntimeURL, mustJSON(t, map[string]any{
		"linux": map[string]any{testComponent: []any{
			map[string]any{"manifest": map[string]any{"url": testImageURL}},
			map[string]any{"manifest": map[string]any{"url": "https://meta.test/jre/ignored.json"}},
		}},
	}))

	up.serve(testImageURL, mustJSON(t, map[string]any{"files": map[string]any{
		"bin":             map[string]any{"type": "directory"},
		"bin/java":        map[string]any{"type": "file", "executable": true, "downloads": map[string]any{"raw": map[string]any{"url": testJavaURL, "sha1": digest(java)}}},
		"a-link/javalink": map[string]any{"type": "link", "target": "../bin/java"},
		"legal":           map[string]any{"type": "directory"},
	}}))
}

// newTestInstaller wires an installer over up rooted in a temp directory.
func newTestInstaller(t *testing.T, up *fakeUpstream, p platform.Platform) (*Installer, *recordingExtractor, *metrics.Recorder) {
	t.Helper()

	extractor := new(recordingExtractor)
	recorder := metrics.New()

	in := New(Settings{
		CatalogURL:         testCatalogURL,
		AssetsURL:          testAssetsURL,
		RuntimeManifestURL: testRuntimeURL,
		Root:               t.TempDir(),
		Platform:           p,
		Concurrency:        4,
	}, up, extractor, recorder)

	return in, extractor, recorder
}

// resolved unwraps layout paths that can be rejected.
func resolved(t *testing.T) func(string, error) string {
	t.Helper()

	return func(p string, err error) string {
		require.NoError(t, err)

		return p
	}
}
