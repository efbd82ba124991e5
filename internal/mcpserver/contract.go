package mcpserver

// PostFormatContract describes the canonical content file format that
// LLM consumers should follow when drafting posts.
const PostFormatContract = `# Stanza Content File Format

Every Markdown content file MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED – used everywhere the post is listed
description: One-sentence summary  # OPTIONAL – derived from the body when absent
tags:                              # OPTIONAL – YAML list; used for tag pages
  - tag-one
  - tag-two
category: Free-text classification # OPTIONAL
published: true                    # OPTIONAL – defaults to true
card_theme: midnight               # OPTIONAL – social card background
---

Body text in standard Markdown. Fenced code blocks are syntax highlighted.
` + "```" + `

## Rules

1. **Published filenames** follow ` + "`" + `YYYYMMDD-slug.md` + "`" + `; the slug becomes the
   record id and the prefix its publish date. A file that breaks this
   pattern fails the whole category load.
2. **Draft filenames** are just ` + "`" + `slug.md` + "`" + ` in the staging directory; the
   publish workflow adds the date prefix.
3. **Only the keys above are recognised.** Unknown keys are ignored with
   a warning.
4. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `distributed-systems` + "`" + `).
5. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
title: Profiling Go allocations
description: Finding a hidden 40% allocation win with pprof.
tags:
  - go
  - performance
published: true
---

# Profiling Go allocations

It started with a graph that looked wrong...
` + "```" + `
`
