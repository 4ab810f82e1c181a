package integration

import "testing"

const (
	releaseID     = "1.20.1"
	javaComponent = "java-runtime-gamma"

	catalogPath    = "/mc/game/version_manifest_v2.json"
	descriptorPath = "/v1/packages/1.20.1.json"
	runtimePath    = "/v1/products/java-runtime/all.json"
	imagePath      = "/v1/packages/jre/manifest.json"
	assetsPrefix   = "/assets"
)

// fixture describes what serveRelease published.
type fixture struct {
	// classpathLibraries is the count of applicable non-native libraries on Linux.
	classpathLibraries int
	// documents are re-fetched on every run.
	documents []string
}

// serveRelease publishes release 1.20.1 with rule-gated libraries, a Linux
// natives bundle, assets sharing a hash and a runtime image using a link.
func serveRelease(t *testing.T, u *upstream) fixture {
	t.Helper()

	type lib struct {
		name, path string
		body       []byte
		rules      []map[string]any
	}

	osRule := func(action, os string) map[string]any {
		return map[string]any{"action": action, "os": map[string]any{"name": os}}
	}

	libs := []lib{
		{name: "com.mojang:logging:1.1.1", path: "com/mojang/logging/1.1.1/logging-1.1.1.jar"},
		{name: "org.lwjgl:lwjgl:3.3.1", path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1.jar"},
		{
			name: "org.lwjgl:lwjgl:3.3.1:natives-linux", path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar",
			body:  zipBytes(t, map[string]string{"linux/x64/org/lwjgl/liblwjgl.so": "elf", "META-INF/MANIFEST.MF": "x"}),
			rules: []map[string]any{osRule("allow", "linux")},
		},
		{
			name: "org.lwjgl:lwjgl:3.3.1:natives-windows", path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-windows.jar",
			body:  zipBytes(t, map[string]string{"windows/x64/org/lwjgl/lwjgl.dll": "pe"}),
			rules: []map[string]any{osRule("allow", "windows")},
		},
		{
			name: "ca.weblite:java-objc-bridge:1.1", path: "ca/weblite/java-objc-bridge/1.1/java-objc-bridge-1.1.jar",
			rules: []map[string]any{osRule("allow", "osx")},
		},
		{
			name: "com.example:not-on-mac:1.0", path: "com/example/not-on-mac/1.0/not-on-mac-1.0.jar",
			rules: []map[string]any{{"action": "allow"}, osRule("disallow", "osx")},
		},
	}

	libraries := make([]any, 0, len(libs))

	for _, l := range libs {
		if l.body == nil {
			l.body = []byte("jar " + l.name)
		}

		url := u.serve("/libraries/"+l.path, l.body)
		entry := map[string]any{
			"name": l.name,
			"downloads": map[string]any{"artifact": map[string]any{
				"path": l.path, "url": url, "sha1": sha1Hex(l.body), "size": len(l.body),
			}},
		}

		if l.rules != nil {
			entry["rules"] = l.rules
		}

		libraries = append(libraries, entry)
	}

	objects := map[string]any{}

	for name, content := range map[string]string{
		"minecraft/sounds/ambient/cave1.ogg": "cave",
		"minecraft/sounds/ambient/cave2.ogg": "cave",
		"icons/icon_16x16.png":               "icon",
	} {
		hash := sha1Hex([]byte(content))
		u.serve(assetsPrefix+"/"+hash[:2]+"/"+hash, []byte(content))
		objects[name] = map[string]any{"hash": hash, "size": len(content)}
	}

	index := mustJSON(t, map[string]any{"objects": objects})
	indexURL := u.serve("/v1/packages/indexes/5.json", index)

	client := []byte("client archive")
	clientURL := u.serve("/v1/objects/client.jar", client)

	descriptor := mustJSON(t, map[string]any{
		"id":                     releaseID,
		"type":                   "release",
		"mainClass":              "net.minecraft.client.main.Main",
		"assets":                 "5",
		"complianceLevel":        1,
		"minimumLauncherVersion": 21,
		"assetIndex":             map[string]any{"id": "5", "url": indexURL, "sha1": sha1Hex(index)},
		"downloads":              map[string]any{"client": map[string]any{"url": clientURL, "sha1": sha1Hex(client)}},
		"javaVersion":            map[string]any{"component": javaComponent, "majorVersion": 17},
		"libraries":              libraries,
	})
	descriptorURL := u.serve(descriptorPath, descriptor)

	u.serve(catalogPath, mustJSON(t, map[string]any{
		"latest": map[string]any{"release": releaseID, "snapshot": "23w31a"},
		"versions": []any{
			map[string]any{"id": "23w31a", "type": "snapshot", "url": u.URL + "/v1/packages/23w31a.json"},
			map[string]any{"id": releaseID, "type": "release", "url": descriptorURL, "sha1": sha1Hex(descriptor)},
		},
	}))

	java := []byte("#!/bin/sh\nexit 0\n")
	javaURL := u.serve("/v1/objects/java", java)
	releaseFile := []byte("JAVA_VERSION=\"17.0.8\"\n")
	releaseURL := u.serve("/v1/objects/release", releaseFile)

	imageURL := u.serve(imagePath, mustJSON(t, map[string]any{"files": map[string]any{
		"bin":              map[string]any{"type": "directory"},
		"bin/java":         map[string]any{"type": "file", "executable": true, "downloads": map[string]any{"raw": map[string]any{"url": javaURL, "sha1": sha1Hex(java)}}},
		"release":          map[string]any{"type": "file", "downloads": map[string]any{"raw": map[string]any{"url": releaseURL}}},
		"legal":            map[string]any{"type": "directory"},
		"legal/java.base":  map[string]any{"type": "link", "target": "../release"},
		"lib/jspawnhelper": map[string]any{"type": "link", "target": "../bin/java"},
	}}))

	u.serve(runtimePath, mustJSON(t, map[string]any{
		"linux": map[string]any{
			javaComponent: []any{map[string]any{"manifest": map[string]any{"url": imageURL}}},
		},
		"windows-x64": map[string]any{"jre-legacy": []any{}},
	}))

	return fixture{
		// logging, lwjgl, not-on-mac.
		classpathLibraries: 3,
		documents:          []string{catalogPath, descriptorPath, runtimePath, imagePath},
	}
}
