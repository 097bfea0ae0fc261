package main

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"pgregory.net/rapid"
)

var docFragments = []string{
	"Edit ", "index.php", " to continue. ", "See ", "`style.css`", " for details.",
	"a.b.md", "page.mdx", "foo.json", "x_y-z.yaml", "INDEX.PHP", "1.2.3",
	".", ",", " ", "\n", "\n\n",
	"[guide](./guide.md)", "https://example.com/a.html", "<Card title=\"card.js\" />",
	"`npm run build.js`", "import Foo from './foo.js';\n",
	"\n\n```php\n$x = \"config.php\";\n```\n\n",
	"\n\n~~~\nraw.css\n~~~\n\n",
	"\n\n````md\n```\nnested.md\n```\n````\n\n",
}

var protectionChoices = []Protection{
	ProtectAll,
	ProtectNone,
	ProtectInlineCode,
	ProtectHTML | ProtectLinks | ProtectURLs,
	ProtectFrontMatter | ProtectESM,
}

func documentGen(fragments []string) *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		var b strings.Builder
		if rapid.Bool().Draw(t, "frontmatter") {
			b.WriteString("---\ntitle: Home page index.php\n---\n")
		}
		for _, part := range rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 40).Draw(t, "parts") {
			b.WriteString(part)
		}
		return b.String()
	})
}

func drawAnnotator(t *rapid.T) *Annotator {
	protect := rapid.SampledFrom(protectionChoices).Draw(t, "protect")
	a, err := NewAnnotator(DefaultTokenExtensions, protect, nil)
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}
	return a
}

func TestProperty_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawAnnotator(t)
		doc := documentGen(docFragments).Draw(t, "doc")
		once, _ := a.Annotate(doc)
		twice, n := a.Annotate(once)
		if twice != once || n != 0 {
			t.Fatalf("second pass changed output (%d tokens)\nonce:  %q\ntwice: %q", n, once, twice)
		}
	})
}

func TestProperty_FencedCodeUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawAnnotator(t)
		doc := documentGen(docFragments).Draw(t, "doc")
		out, _ := a.Annotate(doc)

		before, after := fencedBlocks(doc), fencedBlocks(out)
		if strings.Join(before, "\x00") != strings.Join(after, "\x00") {
			t.Fatalf("fenced code changed\nbefore: %q\nafter:  %q", before, after)
		}
		ownBefore, ownAfter := fenceTexts(a, doc), fenceTexts(a, out)
		if strings.Join(ownBefore, "\x00") != strings.Join(ownAfter, "\x00") {
			t.Fatalf("fence segments changed\nbefore: %q\nafter:  %q", ownBefore, ownAfter)
		}
	})
}

func TestProperty_NoTokensNoChange(t *testing.T) {
	plain := []string{
		"Hello ", "world", " ", "\n", "\n\n", "`style.css`", "version 1.2.3",
		"INDEX.PHP", "node", ".", "\n\n```php\n$x = \"config.php\";\n```\n\n",
	}
	rapid.Check(t, func(t *rapid.T) {
		a := drawAnnotator(t)
		var b strings.Builder
		for _, part := range rapid.SliceOfN(rapid.SampledFrom(plain), 0, 40).Draw(t, "parts") {
			b.WriteString(part)
		}
		doc := b.String()
		out, n := a.Annotate(doc)
		if n != 0 || out != doc {
			t.Fatalf("unexpected change (%d tokens): %q -> %q", n, doc, out)
		}
	})
}

func TestProperty_BareTokensAreWrapped(t *testing.T) {
	words := []string{"alpha", "index.php", "a-b_c.yaml", "notes.md", "beta", "site.webmanifest"}
	tokens := map[string]bool{"index.php": true, "a-b_c.yaml": true, "notes.md": true}
	rapid.Check(t, func(t *rapid.T) {
		a := drawAnnotator(t)
		picked := rapid.SliceOfN(rapid.SampledFrom(words), 1, 30).Draw(t, "words")
		want := make([]string, len(picked))
		count := 0
		for i, w := range picked {
			if tokens[w] {
				want[i] = "`" + w + "`"
				count++
			} else {
				want[i] = w
			}
		}
		out, n := a.Annotate(strings.Join(picked, " "))
		if out != strings.Join(want, " ") || n != count {
			t.Fatalf("got %q (%d), want %q (%d)", out, n, strings.Join(want, " "), count)
		}
	})
}

// fencedBlocks lists fenced code blocks as goldmark sees them: the info
// string followed by the raw content lines.
func fencedBlocks(src string) []string {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		if fcb.Info != nil {
			b.Write(fcb.Info.Segment.Value(source))
		}
		b.WriteByte('\n')
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			b.Write(line.Value(source))
		}
		blocks = append(blocks, b.String())
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func fenceTexts(a *Annotator, content string) []string {
	var out []string
	for _, seg := range a.segments(content) {
		if seg.kind == spanFence {
			out = append(out, content[seg.start:seg.end])
		}
	}
	return out
}
