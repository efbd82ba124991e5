package cards

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"
)

// stubTool writes a shell script that records its arguments and touches
// the last argument as the output file.
func stubTool(t *testing.T, exitCode int) (tool, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not portable to windows")
	}
	dir := t.TempDir()
	tool = filepath.Join(dir, "fake-magick")
	argsFile = filepath.Join(dir, "args.txt")

	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > " + argsFile + "\n"
	if exitCode == 0 {
		script += "for last; do :; done\ntouch \"$last\"\n"
	} else {
		script += "echo 'render failed' >&2\nexit " + strconv.Itoa(exitCode) + "\n"
	}
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return tool, argsFile
}

func TestGenerate(t *testing.T) {
	tool, argsFile := stubTool(t, 0)
	outDir := filepath.Join(t.TempDir(), "cards")
	g := NewGenerator(tool, outDir)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out, err := g.Generate(context.Background(), "hello-world", "Hello, World", date, "ember")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != filepath.Join(outDir, "hello-world.png") {
		t.Errorf("unexpected output path %q", out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected output file, got %v", err)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	got := string(args)
	if !strings.Contains(got, "1200x630") {
		t.Errorf("expected card size in args:\n%s", got)
	}
	if !strings.Contains(got, "Hello, World") {
		t.Errorf("expected title in args:\n%s", got)
	}
	if !strings.Contains(got, "March 1, 2024") {
		t.Errorf("expected formatted date in args:\n%s", got)
	}
	if !strings.Contains(got, themes["ember"]) {
		t.Errorf("expected ember background in args:\n%s", got)
	}
}

func TestGenerateUnknownThemeFallsBack(t *testing.T) {
	tool, argsFile := stubTool(t, 0)
	g := NewGenerator(tool, t.TempDir())

	_, err := g.Generate(context.Background(), "x", "X", time.Now(), "no-such-theme")
	if err != nil {
		t.Fatal(err)
	}
	args, _ := os.ReadFile(argsFile)
	if !strings.Contains(string(args), themes[defaultTheme]) {
		t.Errorf("expected default theme background, got:\n%s", args)
	}
}

func TestGenerateToolFailure(t *testing.T) {
	tool, _ := stubTool(t, 1)
	g := NewGenerator(tool, t.TempDir())

	_, err := g.Generate(context.Background(), "x", "X", time.Now(), "midnight")
	if err == nil {
		t.Fatal("expected error on tool failure")
	}
	if !strings.Contains(err.Error(), "render failed") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}
