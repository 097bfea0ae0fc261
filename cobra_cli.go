package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	cobradoc "github.com/spf13/cobra/doc"
)

const rootLongDesc = `
codify wraps bare filenames in documentation prose in inline code, so that
"Edit index.php to continue." becomes "Edit ` + "`index.php`" + ` to continue.".

Files are rewritten in place, and only when something changed. Fenced code blocks
are never touched. Neither are tokens that are already backticked. Front matter,
MDX import/export lines, HTML/JSX tags, link destinations, URLs and inline code
spans can be left alone too (see --protect; off by default).

Without arguments codify processes src/content/docs relative to the working
directory. Settings are read from .codify.yaml, then CODIFY_* environment variables
(a .env file is honored), then flags.
`

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "codify [flags] [root]",
		Short:         "Wrap bare filenames in documentation prose in inline code",
		Long:          strings.TrimSpace(rootLongDesc),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.DisableAutoGenTag = true
	cmd.Version = Version
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.CompletionOptions.DisableDefaultCmd = true

	defaults := DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&app.opts.configPath, "config", defaultConfigPath, "YAML config file (ignored when the default file is missing)")
	flags.StringSliceVar(&app.opts.exts, "ext", defaults.Extensions, "file extensions to walk")
	flags.StringSliceVar(&app.opts.tokenExts, "token-ext", defaults.TokenExtensions, "extensions recognized in filename tokens (case-sensitive)")
	flags.StringSliceVar(&app.opts.ignore, "ignore", defaults.Ignore, "directory names to skip")
	flags.StringSliceVar(&app.opts.protect, "protect", defaults.Protect, "spans left untouched besides fenced code: frontmatter, esm, html, links, urls, inline-code, all, none")
	flags.IntVarP(&app.opts.jobs, "jobs", "j", defaults.Jobs, "number of files processed concurrently")
	flags.BoolVar(&app.opts.keepGoing, "keep-going", false, "process remaining files after a file error")
	flags.BoolVar(&app.opts.check, "check", false, "report files that would change without writing; fail if any")
	flags.BoolVarP(&app.opts.quiet, "quiet", "q", false, "suppress progress output")
	flags.StringVar(&app.opts.logLevel, "log-level", defaults.LogLevel, "diagnostic log level: debug, info, warn, error")

	_ = cmd.RegisterFlagCompletionFunc("protect", completeList(protectionCompletions()))
	_ = cmd.RegisterFlagCompletionFunc("log-level", completeList([]string{"debug", "info", "warn", "error"}))

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return app.execute(ctx, cmd.Flags(), args)
	}

	cmd.AddCommand(newCompletionCmd(cmd))
	cmd.AddCommand(newDocsCmd(cmd))
	return cmd
}

var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletion(w) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletion(w) },
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	const longDesc = `Generate shell completion scripts for codify.

Besides subcommands, the scripts complete --protect span names and
--log-level values, so a docs maintainer can type

  codify --protect links,<TAB>

and pick from frontmatter, esm, html, links, urls, inline-code, all, none.

Install the script for your shell, for example:

  codify completion bash > /usr/local/etc/bash_completion.d/codify
  codify completion zsh > "${fpath[1]}/_codify"
  codify completion fish | source
  codify completion powershell | Out-String | Invoke-Expression
`
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  longDesc,
		Args:                  cobra.ExactValidArgs(1),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		gen, ok := completionShells[args[0]]
		if !ok {
			return fmt.Errorf("unsupported shell %q", args[0])
		}
		return gen(root, cmd.OutOrStdout())
	}
	return cmd
}

// completeList completes the last element of a comma-separated flag value.
func completeList(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		head, last := "", toComplete
		if i := strings.LastIndexByte(toComplete, ','); i >= 0 {
			head, last = toComplete[:i+1], toComplete[i+1:]
		}
		var out []string
		for _, v := range values {
			if strings.HasPrefix(v, last) {
				out = append(out, head+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func protectionCompletions() []string {
	names := make([]string, 0, len(protectionNames)+2)
	for _, entry := range protectionNames {
		names = append(names, entry.name)
	}
	return append(names, "all", "none")
}

func newDocsCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-docs [directory]",
		Short: "Generate the CLI reference as site pages",
		Long: strings.TrimSpace(`
Write one Markdown page per codify command into a docs content directory. Each
page starts with a front matter title, so the site picks the pages up as-is and
the docs describe their own maintenance tooling.

Example:

  codify gen-docs ./src/content/docs/reference/codify
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if target == "" {
			return fmt.Errorf("target directory is required")
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		return cobradoc.GenMarkdownTreeCustom(root, target, pageFrontMatter, func(name string) string { return name })
	}
	return cmd
}

// pageFrontMatter titles a generated page after its command, "codify_gen-docs.md"
// becoming "codify gen-docs".
func pageFrontMatter(filename string) string {
	title := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(filename), ".md"), "_", " ")
	return fmt.Sprintf("---\ntitle: %s\n---\n\n", title)
}
