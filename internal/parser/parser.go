// Package parser extracts wikilinks and tags from Markdown content and
// rewrites link targets when notes move.
package parser

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Links returns deduplicated wikilink targets from body, normalising
// [[Target|Alias]] forms to their target.
func Links(body string) []string {
	seen := make(map[string]struct{})
	var out []string
	forEachLink(body, func(target, _ string) (string, bool) {
		if _, ok := seen[target]; !ok {
			seen[target] = struct{}{}
			out = append(out, target)
		}
		return "", false
	})
	return out
}

// RewriteLinks replaces wikilinks pointing at oldTarget with newTarget,
// preserving aliases. It returns the rewritten content and the number
// of links changed.
func RewriteLinks(content, oldTarget, newTarget string) (string, int) {
	changed := 0
	out := replaceLinks(content, func(target, alias string) (string, bool) {
		if target != oldTarget {
			return "", false
		}
		changed++
		if alias != "" {
			return "[[" + newTarget + "|" + alias + "]]", true
		}
		return "[[" + newTarget + "]]", true
	})
	return out, changed
}

// Tags collects tags from YAML frontmatter ("tags" list) and inline
// #tag tokens in the body, deduplicated in order of appearance.
func Tags(data []byte) []string {
	fm, body := splitFrontmatter(data)

	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	if fm != nil {
		if raw, ok := fm["tags"].([]interface{}); ok {
			for _, item := range raw {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
	}

	for _, tag := range inlineTags(body) {
		add(tag)
	}
	return out
}

// inlineTags scans body for #tag tokens at word boundaries.
func inlineTags(body string) []string {
	var out []string
	for i := 0; i < len(body); i++ {
		if body[i] != '#' {
			continue
		}
		if i > 0 && !isSpace(body[i-1]) {
			continue
		}
		j := i + 1
		if j >= len(body) || !isTagStart(body[j]) {
			continue
		}
		for j < len(body) && isTagChar(body[j]) {
			j++
		}
		out = append(out, body[i+1:j])
		i = j
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isTagStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isTagChar(c byte) bool {
	return isTagStart(c) || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '/'
}

// forEachLink walks every [[...]] token, calling fn with the parsed
// target and alias. The replacement return values are ignored.
func forEachLink(content string, fn func(target, alias string) (string, bool)) {
	replaceLinks(content, fn)
}

// replaceLinks walks every [[...]] token. fn returns the replacement
// text and whether to substitute it.
func replaceLinks(content string, fn func(target, alias string) (string, bool)) string {
	var b strings.Builder
	rest := content
	for {
		start := strings.Index(rest, "[[")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "]]")
		if end < 0 {
			break
		}
		end += start

		inner := rest[start+2 : end]
		target, alias := inner, ""
		if i := strings.Index(inner, "|"); i >= 0 {
			target, alias = inner[:i], inner[i+1:]
		}
		target = strings.TrimSpace(target)

		b.WriteString(rest[:start])
		if repl, ok := fn(target, alias); ok {
			b.WriteString(repl)
		} else {
			b.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}
	b.WriteString(rest)
	return b.String()
}

// splitFrontmatter separates YAML frontmatter (between leading ---
// delimiters) from the Markdown body. Content without frontmatter, or
// with invalid YAML, comes back as body only.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}
