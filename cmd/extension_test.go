package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	tempDir := t.TempDir()

	// bourse-hello prints the environment it receives.
	helloCmdSource := fmt.Sprintf(`
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("%s=%%s\n", os.Getenv("%s"))
	fmt.Printf("args=%%v\n", os.Args[1:])
}
`, EnvConfig, EnvConfig, EnvVerbose, EnvVerbose)

	helloCmdPath := filepath.Join(tempDir, "bourse-hello")
	srcFile := helloCmdPath + ".go"
	if err := os.WriteFile(srcFile, []byte(helloCmdSource), 0644); err != nil {
		t.Fatalf("Failed to write bourse-hello source: %v", err)
	}
	build := exec.Command("go", "build", "-o", helloCmdPath, srcFile)
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("Failed to compile bourse-hello: %v", err)
	}

	bourseBinaryPath := filepath.Join(tempDir, "bourse")
	build = exec.Command("go", "build", "-o", bourseBinaryPath, "../bourse")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("Failed to compile bourse binary: %v", err)
	}

	expectedConfig := filepath.Join(tempDir, "random.yaml")
	args := []string{
		"-config", expectedConfig,
		"-v",
		"hello", // The extension subcommand
		"world",
	}
	bourseCmd := exec.Command(bourseBinaryPath, args...)
	bourseCmd.Env = []string{"PATH=" + tempDir + string(os.PathListSeparator) + os.Getenv("PATH")}

	var stdout, stderr bytes.Buffer
	bourseCmd.Stdout = &stdout
	bourseCmd.Stderr = &stderr
	if err := bourseCmd.Run(); err != nil {
		t.Fatalf("bourse command failed: %v\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}

	output := stdout.String()
	for _, expectedLine := range []string{
		EnvConfig + "=" + expectedConfig,
		EnvVerbose + "=true",
		"args=[world]",
	} {
		if !strings.Contains(output, expectedLine) {
			t.Errorf("Expected output to contain %q, but got:\n%s", expectedLine, output)
		}
	}
}
