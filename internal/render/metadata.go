package render

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata maps a lowercase front-matter key to its values, one per line
// or list item.
type Metadata map[string][]string

// Joined returns the values of key joined by single spaces, and whether the
// key was present.
func (m Metadata) Joined(key string) (string, bool) {
	v, ok := m[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return strings.Join(v, " "), true
}

var (
	metaLineRe  = regexp.MustCompile(`^[ ]{0,3}([A-Za-z0-9_-]+):\s*(.*)$`)
	metaMoreRe  = regexp.MustCompile(`^[ ]{4,}(.*)$`)
	metaBeginRe = regexp.MustCompile(`^-{3}(\s.*)?$`)
	metaEndRe   = regexp.MustCompile(`^(-{3}|\.{3})(\s.*)?$`)
)

// SplitMetadata separates a leading metadata block from the markdown body.
//
// A block fenced by "---" and "---" (or "...") is read as a YAML mapping.
// Anything else falls back to MultiMarkdown-style "key: value" lines that
// end at the first blank line. Invalid input yields empty metadata, never an
// error.
func SplitMetadata(source []byte) (Metadata, []byte) {
	lines := strings.SplitAfter(string(source), "\n")

	if len(lines) > 0 && metaBeginRe.MatchString(trimEOL(lines[0])) {
		for i := 1; i < len(lines); i++ {
			if !metaEndRe.MatchString(trimEOL(lines[i])) {
				continue
			}
			block := strings.Join(lines[1:i], "")
			if meta, ok := yamlMetadata([]byte(block)); ok {
				return meta, []byte(strings.Join(lines[i+1:], ""))
			}
			break
		}
	}
	return lineMetadata(lines)
}

// yamlMetadata decodes a YAML mapping, keeping scalar values as written.
func yamlMetadata(block []byte) (Metadata, bool) {
	if len(bytes.TrimSpace(block)) == 0 {
		return Metadata{}, true
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, false
	}

	meta := Metadata{}
	mapping := doc.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := strings.ToLower(mapping.Content[i].Value)
		meta[key] = append(meta[key], nodeValues(mapping.Content[i+1])...)
	}
	return meta, true
}

func nodeValues(n *yaml.Node) []string {
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias != nil {
			return nodeValues(n.Alias)
		}
		return []string{""}
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			out = append(out, strings.Join(nodeValues(item), " "))
		}
		return out
	case yaml.MappingNode:
		out := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, n.Content[i].Value+": "+strings.Join(nodeValues(n.Content[i+1]), " "))
		}
		return out
	default:
		if n.ShortTag() == "!!null" {
			return []string{""}
		}
		return splitLines(n.Value)
	}
}

// lineMetadata reads MultiMarkdown-style metadata from the start of lines.
func lineMetadata(lines []string) (Metadata, []byte) {
	meta := Metadata{}
	rest := lines
	if len(rest) > 0 && metaBeginRe.MatchString(trimEOL(rest[0])) {
		rest = rest[1:]
	}

	key := ""
	consumed := 0
	for consumed < len(rest) {
		line := trimEOL(rest[consumed])
		if strings.TrimSpace(line) == "" || metaEndRe.MatchString(line) {
			consumed++
			break
		}
		if m := metaLineRe.FindStringSubmatch(line); m != nil {
			key = strings.ToLower(m[1])
			meta[key] = append(meta[key], strings.TrimSpace(m[2]))
		} else if m := metaMoreRe.FindStringSubmatch(line); m != nil && key != "" {
			meta[key] = append(meta[key], strings.TrimSpace(m[1]))
		} else {
			break
		}
		consumed++
	}

	if len(meta) == 0 {
		return meta, []byte(strings.Join(lines, ""))
	}
	return meta, []byte(strings.Join(rest[consumed:], ""))
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return []string{""}
	}
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}
