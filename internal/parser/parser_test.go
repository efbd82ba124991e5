package parser

import (
	"strings"
	"testing"
	"time"
)

func TestParseFilename(t *testing.T) {
	id, date, err := ParseFilename("posts/20240301-hello-world.md")
	if err != nil {
		t.Fatalf("ParseFilename failed: %v", err)
	}
	if id != "hello-world" {
		t.Errorf("expected id 'hello-world', got %q", id)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, date)
	}
}

func TestParseFilenameStable(t *testing.T) {
	first, _, err := ParseFilename("20240301-my-post.md")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := ParseFilename("20240301-my-post.md")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("id not stable: %q vs %q", first, second)
	}
}

func TestParseFilenameRejectsBadNames(t *testing.T) {
	bad := []string{
		"hello-world.md",
		"2024030-short-date.md",
		"20240301.md",
		"20240301-slug.txt",
	}
	for _, name := range bad {
		if _, _, err := ParseFilename(name); err == nil {
			t.Errorf("expected error for %q, got nil", name)
		}
	}
}

func TestParseMeta(t *testing.T) {
	data := []byte(`---
title: Hello
description: A greeting.
tags:
  - go
  - intro
published: true
---

Body text here.
`)
	meta, body, warnings := ParseMeta(data)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if meta.Title != "Hello" {
		t.Errorf("expected title 'Hello', got %q", meta.Title)
	}
	if meta.Description != "A greeting." {
		t.Errorf("unexpected description %q", meta.Description)
	}
	if len(meta.Tags) != 2 || meta.Tags[0] != "go" || meta.Tags[1] != "intro" {
		t.Errorf("unexpected tags %v", meta.Tags)
	}
	if !meta.IsPublished() {
		t.Error("expected published")
	}
	if strings.TrimSpace(body) != "Body text here." {
		t.Errorf("unexpected body %q", body)
	}
}

func TestParseMetaPublishedDefaultsTrue(t *testing.T) {
	meta, _, _ := ParseMeta([]byte("---\ntitle: T\n---\nbody"))
	if meta.Published != nil {
		t.Error("expected published to be unset")
	}
	if !meta.IsPublished() {
		t.Error("expected IsPublished to default to true")
	}
}

func TestParseMetaPublishedFalse(t *testing.T) {
	meta, _, _ := ParseMeta([]byte("---\npublished: false\n---\nbody"))
	if meta.IsPublished() {
		t.Error("expected IsPublished false")
	}
}

func TestParseMetaNoFrontmatter(t *testing.T) {
	content := "# Just a heading\n\nNo frontmatter at all.\n"
	meta, body, warnings := ParseMeta([]byte(content))
	if meta.Title != "" {
		t.Errorf("expected empty metadata, got title %q", meta.Title)
	}
	if body != content {
		t.Errorf("expected whole file as body, got %q", body)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}

func TestParseMetaMalformedYAML(t *testing.T) {
	data := []byte("---\ntitle: [unclosed\n---\nbody text")
	meta, body, warnings := ParseMeta(data)
	if meta.Title != "" {
		t.Errorf("expected empty metadata, got %+v", meta)
	}
	if body != "body text" {
		t.Errorf("expected body preserved, got %q", body)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "malformed frontmatter") {
		t.Errorf("expected malformed frontmatter warning, got %v", warnings)
	}
}

func TestParseMetaUnknownKeys(t *testing.T) {
	data := []byte("---\ntitle: T\nauthor: someone\nweight: 3\n---\nbody")
	meta, _, warnings := ParseMeta(data)
	if meta.Title != "T" {
		t.Errorf("known keys should still decode, got title %q", meta.Title)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected two warnings, got %v", warnings)
	}
	// Warnings come back sorted.
	if !strings.Contains(warnings[0], `"author"`) || !strings.Contains(warnings[1], `"weight"`) {
		t.Errorf("unexpected warning order: %v", warnings)
	}
}

func TestParseFile(t *testing.T) {
	data := []byte(`---
title: Hello World
tags:
  - go
---

First paragraph of the post.
`)
	rec, warnings, err := ParseFile("posts/20240301-hello-world.md", data)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if rec.ID != "hello-world" {
		t.Errorf("unexpected id %q", rec.ID)
	}
	if rec.Title != "Hello World" {
		t.Errorf("unexpected title %q", rec.Title)
	}
	if !rec.Published {
		t.Error("expected published by default")
	}
	if !strings.Contains(rec.Body, "<p>") {
		t.Errorf("expected rendered HTML body, got %q", rec.Body)
	}
	if rec.Description != "First paragraph of the post." {
		t.Errorf("expected derived description, got %q", rec.Description)
	}
	if rec.SourcePath != "posts/20240301-hello-world.md" {
		t.Errorf("unexpected source path %q", rec.SourcePath)
	}
}

func TestParseFileBadFilename(t *testing.T) {
	_, _, err := ParseFile("posts/no-date.md", []byte("body"))
	if err == nil {
		t.Fatal("expected error for bad filename")
	}
}

func TestRenderMarkdown(t *testing.T) {
	html, err := Render("# Heading\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("unexpected HTML: %q", html)
	}
}

func TestRenderFencedCode(t *testing.T) {
	html, err := Render("```go\nfmt.Println(\"hi\")\n```")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "<pre") {
		t.Errorf("expected highlighted code block, got %q", html)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<p>Hello <strong>world</strong></p>")
	if !strings.Contains(got, "Hello") || strings.Contains(got, "<") {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestSummarize(t *testing.T) {
	html := "<p>The quick brown fox jumps over the lazy dog and keeps on running</p>"
	got := Summarize(html, 20)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	if strings.Contains(got, "<") {
		t.Errorf("expected no markup in summary, got %q", got)
	}

	short := Summarize("<p>Short.</p>", 160)
	if short != "Short." {
		t.Errorf("expected full text when under limit, got %q", short)
	}
}
