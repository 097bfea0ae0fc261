package main

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

type spanKind int

const (
	spanProse spanKind = iota
	spanFence
	spanFrontMatter
	spanStructural
	spanInlineCode
)

func (k spanKind) String() string {
	switch k {
	case spanProse:
		return "prose"
	case spanFence:
		return "fence"
	case spanFrontMatter:
		return "frontmatter"
	case spanStructural:
		return "structural"
	case spanInlineCode:
		return "inline-code"
	default:
		return "unknown"
	}
}

// segment is a byte range [start, end) of the document it was split from.
type segment struct {
	kind       spanKind
	start, end int
}

// Protection is a set of span kinds that are left untouched besides fenced
// code, which is always protected.
type Protection uint

const (
	ProtectFrontMatter Protection = 1 << iota
	ProtectESM
	ProtectHTML
	ProtectLinks
	ProtectURLs
	ProtectInlineCode

	ProtectNone Protection = 0
	ProtectAll             = ProtectFrontMatter | ProtectESM | ProtectHTML | ProtectLinks | ProtectURLs | ProtectInlineCode
)

var protectionNames = []struct {
	name string
	bit  Protection
}{
	{"frontmatter", ProtectFrontMatter},
	{"esm", ProtectESM},
	{"html", ProtectHTML},
	{"links", ProtectLinks},
	{"urls", ProtectURLs},
	{"inline-code", ProtectInlineCode},
}

// ParseProtection turns protection names into a set. "all" and "none" are
// accepted as shorthands.
func ParseProtection(names []string) (Protection, error) {
	var p Protection
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "":
			continue
		case "all":
			p |= ProtectAll
			continue
		case "none":
			continue
		}
		found := false
		for _, entry := range protectionNames {
			if entry.name == name {
				p |= entry.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown protection %q", ErrInvalidConfig, raw)
		}
	}
	return p, nil
}

func (p Protection) Has(bit Protection) bool { return p&bit == bit }

func (p Protection) String() string {
	if p == ProtectNone {
		return "none"
	}
	var names []string
	for _, entry := range protectionNames {
		if p.Has(entry.bit) {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, ",")
}

// Structural spans are recognized without looking at backticks, so
// inserting inline-code delimiters never changes them. None of them crosses
// a blank line.
var structuralPatterns = []struct {
	bit     Protection
	pattern string
}{
	{ProtectESM, `(?m)^(?:import|export)[ \t{*][^\n]*(?:\n[^\n]*\S[^\n]*)*`},
	{ProtectHTML, `<[A-Za-z/!](?:[^<>\n]|\n[ \t]*[^\s<>])*(?:\n[ \t]*)?>`},
	{ProtectLinks, `\]\([^()\s]*(?:(?:[ \t]+|[ \t]*\n[ \t]*)"[^"\n]*")?\)`},
	{ProtectLinks, `(?m)^[ \t]*\[[^\]\n]+\]:[ \t]*\S+`},
	{ProtectURLs, "[A-Za-z][A-Za-z0-9+.-]*://[^\\s<>()\\[\\]\"'`]+"},
}

func compileStructural(p Protection) *regexp.Regexp {
	var alts []string
	for _, sp := range structuralPatterns {
		if p.Has(sp.bit) {
			alts = append(alts, "(?:"+sp.pattern+")")
		}
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(strings.Join(alts, "|"))
}

var yamlFrontMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// frontMatterLen returns the length of a leading YAML front matter block, or
// zero when the document does not start with a well-formed one.
func frontMatterLen(content string, logger *slog.Logger) int {
	if !strings.HasPrefix(content, "---") {
		return 0
	}
	var meta map[string]any
	rest, err := frontmatter.Parse(strings.NewReader(content), &meta, yamlFrontMatter)
	if err != nil {
		logger.Debug("front matter not parsed, treating as prose", "err", err)
		return 0
	}
	if len(rest) >= len(content) || !strings.HasSuffix(content, string(rest)) {
		return 0
	}
	n := len(content) - len(rest)
	if !strings.HasSuffix(strings.TrimRight(content[:n], "\r\n \t"), "---") || n <= len("---") {
		return 0
	}
	return n
}

// splitFences partitions content[lo:hi] into prose and fenced code segments.
// A fence opens on a line whose first non-blank characters are three or more
// backticks or tildes and closes on a line holding only a run of the same
// character at least as long. An unclosed fence runs to hi.
func splitFences(content string, lo, hi int) []segment {
	var segs []segment
	proseStart := lo
	pos := lo
	for pos < hi {
		line, next := lineAt(content, pos, hi)
		ch, n, ok := fenceOpener(line)
		if !ok {
			pos = next
			continue
		}
		end := hi
		for p := next; p < hi; {
			l, nx := lineAt(content, p, hi)
			if fenceCloser(l, ch, n) {
				end = nx
				break
			}
			p = nx
		}
		if pos > proseStart {
			segs = append(segs, segment{kind: spanProse, start: proseStart, end: pos})
		}
		segs = append(segs, segment{kind: spanFence, start: pos, end: end})
		proseStart, pos = end, end
	}
	if proseStart < hi {
		segs = append(segs, segment{kind: spanProse, start: proseStart, end: hi})
	}
	return segs
}

// lineAt returns the line starting at pos without its terminator, and the
// offset of the following line.
func lineAt(content string, pos, hi int) (string, int) {
	idx := strings.IndexByte(content[pos:hi], '\n')
	if idx < 0 {
		return strings.TrimSuffix(content[pos:hi], "\r"), hi
	}
	return strings.TrimSuffix(content[pos:pos+idx], "\r"), pos + idx + 1
}

func fenceOpener(line string) (byte, int, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return 0, 0, false
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return 0, 0, false
	}
	n := runLength(trimmed, 0, len(trimmed))
	if n < 3 {
		return 0, 0, false
	}
	if ch == '`' && strings.IndexByte(trimmed[n:], '`') >= 0 {
		// A backtick info string cannot hold backticks; this is inline code.
		return 0, 0, false
	}
	return ch, n, true
}

func fenceCloser(line string, ch byte, n int) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= n && runLength(trimmed, 0, len(trimmed)) == len(trimmed) && trimmed[0] == ch
}

// splitProse refines one prose segment into protected structural spans,
// inline code spans and the remaining prose.
func splitProse(content string, seg segment, structural *regexp.Regexp, inline bool) []segment {
	var gaps []segment
	if structural == nil {
		gaps = []segment{seg}
	} else {
		last := seg.start
		for _, loc := range structural.FindAllStringIndex(content[seg.start:seg.end], -1) {
			start, end := seg.start+loc[0], seg.start+loc[1]
			if start == end {
				continue
			}
			if start > last {
				gaps = append(gaps, segment{kind: spanProse, start: last, end: start})
			}
			gaps = append(gaps, segment{kind: spanStructural, start: start, end: end})
			last = end
		}
		if last < seg.end {
			gaps = append(gaps, segment{kind: spanProse, start: last, end: seg.end})
		}
	}
	if !inline {
		return gaps
	}
	out := make([]segment, 0, len(gaps))
	for _, g := range gaps {
		if g.kind != spanProse {
			out = append(out, g)
			continue
		}
		out = append(out, splitInlineCode(content, g.start, g.end)...)
	}
	return out
}

// splitInlineCode finds code spans in content[lo:hi]. A run of n backticks
// opens a span that closes at the next run of exactly n backticks in the same
// paragraph; an opener with no closer is literal text.
func splitInlineCode(content string, lo, hi int) []segment {
	var segs []segment
	proseStart := lo
	i := lo
	for i < hi {
		if content[i] != '`' {
			i++
			continue
		}
		n := runLength(content, i, hi)
		closeAt := -1
		for j := i + n; j < hi; {
			if content[j] == '\n' && blankLineAfter(content, j, hi) {
				break
			}
			if content[j] != '`' {
				j++
				continue
			}
			m := runLength(content, j, hi)
			if m == n {
				closeAt = j
				break
			}
			j += m
		}
		if closeAt < 0 {
			i += n
			continue
		}
		end := closeAt + n
		if i > proseStart {
			segs = append(segs, segment{kind: spanProse, start: proseStart, end: i})
		}
		segs = append(segs, segment{kind: spanInlineCode, start: i, end: end})
		proseStart, i = end, end
	}
	if proseStart < hi {
		segs = append(segs, segment{kind: spanProse, start: proseStart, end: hi})
	}
	return segs
}

// blankLineAfter reports whether the line following the newline at nl holds
// only whitespace, ending a paragraph.
func blankLineAfter(content string, nl, hi int) bool {
	for k := nl + 1; k < hi; k++ {
		switch content[k] {
		case ' ', '\t', '\r':
		case '\n':
			return true
		default:
			return false
		}
	}
	return false
}

func runLength(content string, i, hi int) int {
	j := i
	for j < hi && content[j] == content[i] {
		j++
	}
	return j - i
}
