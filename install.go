package extbuild

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var nativeLibraryExtensions = []string{".so", ".pyd", ".dll", ".dylib", ".bundle"}

// installInplace copies a linked artifact into the package source tree so
// the module can be imported without an install step. The dotted module
// name decides the sub-directory under config.PackageDir.
func installInplace(config *BuildConfig, name, artifact string) (string, error) {
	if !isNativeLibrary(artifact) {
		return "", fmt.Errorf("%s is not a shared object", artifact)
	}

	parts := strings.Split(name, ".")
	parts[len(parts)-1] = filepath.Base(artifact)

	root := config.PackageDir
	if root == "" {
		root = "."
	}
	dest := filepath.Join(append([]string{root}, parts...)...)

	if filepath.Clean(dest) == filepath.Clean(artifact) {
		return dest, nil
	}
	if err := copyFile(artifact, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func isNativeLibrary(path string) bool {
	return MatchesExtension(path, nativeLibraryExtensions...)
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	if mkErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
