package mcpserver

// AuthoringGuide describes how markdown sources are turned into pages, for
// LLM consumers that read or write documents under the root.
const AuthoringGuide = `# mdpages Authoring Guide

Every page is a Markdown file under the document root.

## Addressing

- ` + "`guide.md`" + ` is served at ` + "`/guide/`" + `.
- ` + "`team/index.md`" + ` is served at ` + "`/team/`" + `; ` + "`index.md`" + ` at the root is ` + "`/`" + `.
- When both ` + "`team.md`" + ` and ` + "`team/index.md`" + ` exist, ` + "`team.md`" + ` wins.
- Files named ` + "`README.md`" + ` and anything whose name starts with ` + "`.`" + ` are never served.

## Front matter (optional)

` + "```" + `markdown
---
title: Human-readable title    # used as the page title
tags: [one, two]
---
` + "```" + `

MultiMarkdown-style ` + "`Key: value`" + ` lines at the top of the file work too.
Without a title the page name is used (` + "`on-call-rota`" + ` becomes "On Call Rota").

## Body

- Footnotes (` + "`[^1]`" + `) and fenced code blocks are supported.
- Tables are parsed, but table tags are not in the allowed HTML list, so
  only the cell text survives. Use lists when structure matters.
- Single newlines become line breaks.
- A paragraph containing only ` + "`[TOC]`" + ` is replaced by a table of contents.
- Links to other pages may be written as ` + "`other.md`" + `, ` + "`other.md/`" + ` or ` + "`other/`" + `;
  all are served as ` + "`other/`" + `. Links with a host are left alone.

## Allowed HTML

Output is sanitized. Only these tags survive: h1-h6, b, i, strong, em, tt, p,
br, span, div, blockquote, code, hr, ul, ol, li, dd, dt, img, a, sub, sup,
small, pre. Attributes: id on any tag, src/alt/title on img, href/title on a.
Inline styles and scripts are removed; other disallowed tags are dropped and
their text is kept.
`
