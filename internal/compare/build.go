package compare

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// ResolveRunner returns the expected runner binary path for an engine.
func ResolveRunner(binDir, name string) string {
	return filepath.Join(binDir, name+"-bench")
}

// BuildRunner compiles the runner binary for the named engine into
// binDir. Build output goes to stderr so it never pollutes reports.
func BuildRunner(
	ctx context.Context,
	logger *slog.Logger,
	binDir string,
	name string,
) (string, error) {
	binPath := ResolveRunner(binDir, name)
	pkgPath := "./" + filepath.Join("cmd", name+"-bench")

	logger.InfoContext(ctx, "building runner",
		slog.String("engine", name),
		slog.String("package", pkgPath),
	)

	cmd := exec.CommandContext(ctx, "go", "build", "-o", binPath, pkgPath)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build %s runner: %w", name, err)
	}

	if _, err := os.Stat(binPath); err != nil {
		return "", fmt.Errorf(
			"build %s runner: binary not found at %s", name, binPath,
		)
	}

	return binPath, nil
}
