package drafts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oakmund/stanza/internal/cards"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
}

func TestSessionPublishes(t *testing.T) {
	w, store, _ := newTestWorkflow(t)
	mustWrite(t, store, "drafts/my-post.md", "---\ntitle: My Post\n---\nbody")

	var out bytes.Buffer
	s := &Session{
		Workflow: w,
		Category: "posts",
		In:       strings.NewReader("1\n2024-03-01\ny\n"),
		Out:      &out,
		Now:      fixedNow,
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "Published: posts/20240301-my-post.md") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if ok, _ := store.Exists("posts/20240301-my-post.md"); !ok {
		t.Error("expected published file")
	}
}

func TestSessionEmptyDateMeansToday(t *testing.T) {
	w, store, _ := newTestWorkflow(t)
	mustWrite(t, store, "drafts/p.md", "---\ntitle: P\n---\nbody")

	var out bytes.Buffer
	s := &Session{
		Workflow: w,
		Category: "posts",
		In:       strings.NewReader("1\n\ny\n"),
		Out:      &out,
		Now:      fixedNow,
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.Exists("posts/20240301-p.md"); !ok {
		t.Errorf("expected today's date prefix, output:\n%s", out.String())
	}
}

func TestSessionCancel(t *testing.T) {
	w, store, _ := newTestWorkflow(t)
	mustWrite(t, store, "drafts/p.md", "---\ntitle: P\n---\nbody")

	var out bytes.Buffer
	s := &Session{
		Workflow: w,
		Category: "posts",
		In:       strings.NewReader("q\n"),
		Out:      &out,
		Now:      fixedNow,
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Cancelled.") {
		t.Errorf("expected cancellation, got:\n%s", out.String())
	}
	if ok, _ := store.Exists("drafts/p.md"); !ok {
		t.Error("draft must remain after cancel")
	}
}

func TestSessionDeclineConfirmation(t *testing.T) {
	w, store, _ := newTestWorkflow(t)
	mustWrite(t, store, "drafts/p.md", "---\ntitle: P\n---\nbody")

	var out bytes.Buffer
	s := &Session{
		Workflow: w,
		Category: "posts",
		In:       strings.NewReader("1\n2024-03-01\nn\n"),
		Out:      &out,
		Now:      fixedNow,
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.Exists("drafts/p.md"); !ok {
		t.Error("draft must remain after declining")
	}
}

func TestSessionRetriesInvalidSelection(t *testing.T) {
	w, store, _ := newTestWorkflow(t)
	mustWrite(t, store, "drafts/p.md", "---\ntitle: P\n---\nbody")

	var out bytes.Buffer
	s := &Session{
		Workflow: w,
		Category: "posts",
		In:       strings.NewReader("7\nabc\n1\n2024-03-01\ny\n"),
		Out:      &out,
		Now:      fixedNow,
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if strings.Count(out.String(), "Not a valid selection.") != 2 {
		t.Errorf("expected two retry prompts, got:\n%s", out.String())
	}
	if ok, _ := store.Exists("posts/20240301-p.md"); !ok {
		t.Error("expected publish after retries")
	}
}

func TestSessionGeneratesCardWithDraftTheme(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not portable to windows")
	}
	w, store, _ := newTestWorkflow(t)
	mustWrite(t, store, "drafts/p.md", "---\ntitle: P\ncard_theme: ember\n---\nbody")

	dir := t.TempDir()
	tool := filepath.Join(dir, "fake-magick")
	argsFile := filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > " + argsFile + "\n" +
		"for last; do :; done\ntouch \"$last\"\n"
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	s := &Session{
		Workflow: w,
		Category: "posts",
		Cards:    cards.NewGenerator(tool, filepath.Join(dir, "out")),
		In:       strings.NewReader("1\n2024-03-01\ny\n"),
		Out:      &out,
		Now:      fixedNow,
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Card written:") {
		t.Fatalf("expected card output, got:\n%s", out.String())
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	// The ember background, not the midnight default: the draft's
	// card_theme must reach the generator.
	if !strings.Contains(string(args), "#3b1f1f") {
		t.Errorf("expected ember theme in tool args:\n%s", args)
	}
}

func TestSessionNoDrafts(t *testing.T) {
	w, _, _ := newTestWorkflow(t)

	var out bytes.Buffer
	s := &Session{
		Workflow: w,
		Category: "posts",
		In:       strings.NewReader(""),
		Out:      &out,
		Now:      fixedNow,
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No drafts in staging.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
