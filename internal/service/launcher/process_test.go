package launcher

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/repository/receipt"
)

func testReceipt() *receipt.Receipt {
	return &receipt.Receipt{
		VersionID:   "1.20.1",
		ReleaseType: "release",
		MainClass:   "net.minecraft.client.main.Main",
		Classpath:   "/r/libraries/a.jar:/r/versions/1.20.1/1.20.1.jar",
		NativesDir:  "/r/versions/1.20.1/natives",
		JavaPath:    "/r/runtime/java-runtime-gamma/linux/java-runtime-gamma/bin/java",
		AssetsDir:   "/r/assets",
		AssetsID:    "5",
	}
}

func testTarget(p platform.Platform) Target {
	return Target{
		GameDir:   "/r",
		MaxMemory: "2G",
		Player:    config.Default().Player,
		Platform:  p,
	}
}

// TestArguments_Linux places JVM flags before the main class and game arguments after it.
func TestArguments_Linux(t *testing.T) {
	t.Parallel()

	args := Arguments(testReceipt(), testTarget(platform.New("linux", "amd64")))

	require.Equal(t, []string{
		"-Xmx2G",
		"-Djava.library.path=/r/versions/1.20.1/natives",
		"-cp", "/r/libraries/a.jar:/r/versions/1.20.1/1.20.1.jar",
		"net.minecraft.client.main.Main",
		"--username", "Player",
		"--version", "1.20.1",
		"--gameDir", "/r",
		"--assetsDir", "/r/assets",
		"--assetIndex", "5",
		"--uuid", "00000000-0000-0000-0000-000000000000",
		"--accessToken", "0",
		"--userType", "legacy",
		"--versionType", "release",
	}, args)
}

// TestArguments_Darwin adds the first-thread flag on macOS only.
func TestArguments_Darwin(t *testing.T) {
	t.Parallel()

	args := Arguments(testReceipt(), testTarget(platform.New("darwin", "arm64")))
	require.Equal(t, "-XstartOnFirstThread", args[1])
	require.False(t, slices.Contains(Arguments(testReceipt(), testTarget(platform.New("windows", "amd64"))), "-XstartOnFirstThread"))
}

// TestEnvironment prepends the natives directory to an existing search path.
func TestEnvironment(t *testing.T) {
	t.Parallel()

	linux := platform.New("linux", "amd64")

	env := Environment([]string{"HOME=/home/p", "LD_LIBRARY_PATH=/usr/lib"}, "/n", linux)
	require.Equal(t, []string{"HOME=/home/p", "LD_LIBRARY_PATH=/n:/usr/lib"}, env)

	env = Environment([]string{"HOME=/home/p"}, "/n", linux)
	require.Equal(t, []string{"HOME=/home/p", "LD_LIBRARY_PATH=/n"}, env)

	env = Environment([]string{"PATH=C:\\Windows"}, "C:\\n", platform.New("windows", "amd64"))
	require.Equal(t, []string{"PATH=C:\\n;C:\\Windows"}, env)
}

// TestEnvironment_KeepsExistingEntries prepends the natives directory and never drops the inherited search path.
func TestEnvironment_KeepsExistingEntries(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		p       platform.Platform
		natives string
		base    string
		want    string
	}{
		"windows system path": {platform.New("windows", "amd64"), `C:\n`, `PATH=C:\Windows\System32;C:\Windows`, `PATH=C:\n;C:\Windows\System32;C:\Windows`},
		"macos dyld path":     {platform.New("darwin", "arm64"), "/n", "DYLD_LIBRARY_PATH=/opt/lib", "DYLD_LIBRARY_PATH=/n:/opt/lib"},
		"empty linux value":   {platform.New("linux", "amd64"), "/n", "LD_LIBRARY_PATH=", "LD_LIBRARY_PATH=/n"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			env := Environment([]string{"HOME=/home/p", tc.base}, tc.natives, tc.p)
			require.Equal(t, []string{"HOME=/home/p", tc.want}, env)
		})
	}
}

// TestBuildCommand runs the receipt's java inside the game directory.
func TestBuildCommand(t *testing.T) {
	t.Parallel()

	rec := testReceipt()
	cmd := BuildCommand(context.Background(), rec, testTarget(platform.New("linux", "amd64")))

	require.Equal(t, rec.JavaPath, cmd.Path)
	require.Equal(t, rec.JavaPath, cmd.Args[0])
	require.Equal(t, "/r", cmd.Dir)
	require.Contains(t, cmd.Env, "LD_LIBRARY_PATH="+rec.NativesDir)
}

// TestRun_OfflineRejectsAliases needs a concrete id without the catalog.
func TestRun_OfflineRejectsAliases(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: writeConfig(t),
		ReleaseID:  "latest",
		Offline:    true,
	})
	require.ErrorIs(t, err, errOfflineAlias)
}

// TestRun_OfflineWithoutReceipt fails when the release was never installed.
func TestRun_OfflineWithoutReceipt(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: writeConfig(t),
		Root:       t.TempDir(),
		ReleaseID:  "1.20.1",
		Offline:    true,
	})
	require.ErrorIs(t, err, receipt.ErrNotFound)
}

func writeConfig(t *testing.T) string {
	t.Helper()

	path := t.TempDir() + "/craftstage.yaml"
	require.NoError(t, config.Save(path, config.Default()))

	return path
}
