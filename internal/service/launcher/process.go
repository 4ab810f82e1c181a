package launcher

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/oshokin/craftstage/internal/config"
	"github.com/oshokin/craftstage/internal/domain/platform"
	"github.com/oshokin/craftstage/internal/repository/receipt"
)

// Target is everything BuildCommand needs besides the receipt.
type Target struct {
	// GameDir is the absolute installation root.
	GameDir string
	// MaxMemory is the -Xmx value.
	MaxMemory string
	// Player is the profile passed as game arguments.
	Player config.Player
	// Platform selects platform-specific flags and environment.
	Platform platform.Platform
}

// Arguments returns the JVM flags, main class and game arguments for rec.
func Arguments(rec *receipt.Receipt, target Target) []string {
	args := []string{"-Xmx" + target.MaxMemory}

	if target.Platform.OS == platform.Darwin {
		args = append(args, "-XstartOnFirstThread")
	}

	return append(args,
		"-Djava.library.path="+rec.NativesDir,
		"-cp", rec.Classpath,
		rec.MainClass,
		"--username", target.Player.Username,
		"--version", rec.VersionID,
		"--gameDir", target.GameDir,
		"--assetsDir", rec.AssetsDir,
		"--assetIndex", rec.AssetsID,
		"--uuid", target.Player.UUID,
		"--accessToken", target.Player.AccessToken,
		"--userType", target.Player.UserType,
		"--versionType", rec.ReleaseType,
	)
}

// Environment returns base with the natives directory prepended to the
// platform's native library search variable.
func Environment(base []string, nativesDir string, p platform.Platform) []string {
	key := p.NativeLibraryEnv()
	prefix := key + "="
	env := make([]string, 0, len(base)+1)
	value := nativesDir

	for _, kv := range base {
		if !strings.HasPrefix(kv, prefix) {
			env = append(env, kv)
			continue
		}

		if existing := strings.TrimPrefix(kv, prefix); existing != "" {
			value = nativesDir + p.PathListSeparator() + existing
		}
	}

	return append(env, prefix+value)
}

// BuildCommand prepares the game process without starting it. The process
// inherits the standard streams and runs inside the game directory.
func BuildCommand(ctx context.Context, rec *receipt.Receipt, target Target) *exec.Cmd {
	//nolint:gosec // The java path and arguments come from our own install receipt.
	cmd := exec.CommandContext(ctx, rec.JavaPath, Arguments(rec, target)...)
	cmd.Dir = target.GameDir
	cmd.Env = Environment(os.Environ(), rec.NativesDir, target.Platform)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd
}
