// # codify
//
// `codify` keeps the documentation prose consistent by wrapping bare
// filenames in inline code. A line such as
//
//	Edit index.php to continue.
//
// becomes
//
//	Edit `index.php` to continue.
//
// Files are rewritten in place and only when something changed. Fenced code
// blocks are never modified, and a token that already touches a backtick is
// left as is, so running the tool twice is the same as running it once.
//
// ## Usage
//
//	go run . [flags] [root]
//
// With no root the tool processes `src/content/docs` relative to the working
// directory. Only `.mdx` files are walked unless `--ext` says otherwise.
//
// Examples:
//
//   - Rewrite the site docs in place:
//
//     go run .
//
//   - Fail in CI when a page still has bare filenames:
//
//     go run . --check --quiet
//
//   - Walk Markdown too, four files at a time:
//
//     go run . --ext .md,.mdx -j 4 ./src/content/docs
//
// ## Recognized tokens
//
// A token is a run of word characters, dots and hyphens ending in one of the
// `--token-ext` extensions (`php`, `html`, `js`, `css`, `md`, `mdx`, `json`,
// `yml`, `yaml` by default). Extensions are matched case-sensitively and must
// end on a word boundary, so `index.json` is one token and the period closing
// a sentence is not part of one.
//
// ## Protected spans
//
// `--protect` names the spans that are left alone besides fenced code:
//
//   - `frontmatter`: the leading YAML block.
//   - `esm`: MDX import and export statements.
//   - `html`: HTML and JSX tags, attributes included.
//   - `links`: Markdown link destinations and reference definitions.
//   - `urls`: absolute URLs.
//   - `inline-code`: existing inline code spans.
//
// None of them is on by default, so every bare token outside fenced code is
// wrapped. `--protect all` (or `protect: [all]` in `.codify.yaml`) turns them
// all on for sites whose pages carry JSX and front matter.
//
// ## Configuration
//
// Settings are layered, last wins: built-in defaults, `.codify.yaml`,
// `CODIFY_ROOT`, `CODIFY_EXTENSIONS`, `CODIFY_JOBS` and `CODIFY_LOG_LEVEL`
// (a `.env` file in the working directory is loaded first), then flags.
//
//	root: src/content/docs
//	extensions: [.mdx, .md]
//	protect: [all]
//	jobs: 4
//
// ## Shell Completion
//
//	go run . completion bash        # bash
//	go run . completion zsh         # zsh
//	go run . completion fish | source
//	go run . completion powershell | Out-String | Invoke-Expression
//
// ## CLI Docs
//
// `gen-docs DIR` writes one Markdown file per command.
package main
