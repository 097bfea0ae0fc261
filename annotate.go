package main

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// DefaultTokenExtensions are the extensions a bare filename token may end in.
var DefaultTokenExtensions = []string{"php", "html", "js", "css", "md", "mdx", "json", "yml", "yaml"}

var extensionIdent = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Annotator wraps bare filename tokens in inline-code delimiters. It holds no
// per-document state and is safe for concurrent use.
type Annotator struct {
	token      *regexp.Regexp
	structural *regexp.Regexp
	protect    Protection
	logger     *slog.Logger
}

// NewAnnotator builds an annotator matching tokens that end in one of exts.
// Extension matching is case-sensitive.
func NewAnnotator(exts []string, protect Protection, logger *slog.Logger) (*Annotator, error) {
	re, err := tokenPattern(exts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Annotator{
		token:      re,
		structural: compileStructural(protect),
		protect:    protect,
		logger:     logger,
	}, nil
}

func tokenPattern(exts []string) (*regexp.Regexp, error) {
	if len(exts) == 0 {
		return nil, fmt.Errorf("%w: no token extensions", ErrInvalidConfig)
	}
	alts := make([]string, 0, len(exts))
	seen := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if !extensionIdent.MatchString(ext) {
			return nil, fmt.Errorf("%w: token extension %q", ErrInvalidConfig, ext)
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		alts = append(alts, regexp.QuoteMeta(ext))
	}
	return regexp.Compile(`[\w.-]+\.(?:` + strings.Join(alts, "|") + `)\b`)
}

// Annotate returns content with every bare filename token outside protected
// spans wrapped in backticks, and the number of tokens wrapped. When nothing
// matched, the returned string is content itself.
func (a *Annotator) Annotate(content string) (string, int) {
	segs := a.segments(content)
	var b strings.Builder
	wrapped := 0
	last := 0
	for _, seg := range segs {
		if seg.kind != spanProse {
			continue
		}
		for _, loc := range a.token.FindAllStringIndex(content[seg.start:seg.end], -1) {
			start, end := seg.start+loc[0], seg.start+loc[1]
			if !bareToken(content, start, end) {
				continue
			}
			if wrapped == 0 {
				b.Grow(len(content) + 16)
			}
			b.WriteString(content[last:start])
			b.WriteByte('`')
			b.WriteString(content[start:end])
			b.WriteByte('`')
			last = end
			wrapped++
		}
	}
	if wrapped == 0 {
		return content, 0
	}
	b.WriteString(content[last:])
	return b.String(), wrapped
}

// bareToken reports whether content[start:end] is neither adjacent to an
// inline-code delimiter nor glued to a word character past a span boundary.
func bareToken(content string, start, end int) bool {
	if start > 0 && content[start-1] == '`' {
		return false
	}
	if end < len(content) && (content[end] == '`' || isWordByte(content[end])) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// segments splits content into ordered, contiguous segments covering it.
func (a *Annotator) segments(content string) []segment {
	var segs []segment
	lo := 0
	if a.protect.Has(ProtectFrontMatter) {
		if n := frontMatterLen(content, a.logger); n > 0 {
			segs = append(segs, segment{kind: spanFrontMatter, start: 0, end: n})
			lo = n
		}
	}
	inline := a.protect.Has(ProtectInlineCode)
	for _, seg := range splitFences(content, lo, len(content)) {
		if seg.kind != spanProse || (a.structural == nil && !inline) {
			segs = append(segs, seg)
			continue
		}
		segs = append(segs, splitProse(content, seg, a.structural, inline)...)
	}
	return segs
}
