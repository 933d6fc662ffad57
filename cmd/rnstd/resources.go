package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rnstd/internal/config"
	"rnstd/internal/resources"
	"rnstd/internal/source"
	"rnstd/internal/tui"
	"rnstd/internal/tui/styles"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"
)

// listing is the --json shape of `rnstd list`.
type listing struct {
	Standards []standardEntry        `json:"standards"`
	Examples  resources.ExampleIndex `json:"examples"`
}

type standardEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the standards and examples in the resources directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, store, closeLog, err := a.setup()
			if err != nil {
				return err
			}
			defer closeLog()

			l := buildListing(store)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(l)
			}
			printListing(cmd.OutOrStdout(), l, terminalWidth(100))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func buildListing(store *resources.Store) listing {
	l := listing{Standards: []standardEntry{}, Examples: store.ListExamples()}
	for _, id := range store.ListStandards() {
		entry := standardEntry{ID: id, Title: id}
		if info, err := store.StandardInfo(id); err == nil {
			entry.Title = info.Title
			entry.Description = info.Description
		}
		l.Standards = append(l.Standards, entry)
	}
	return l
}

func printListing(w io.Writer, l listing, width int) {
	var b strings.Builder

	fmt.Fprintln(&b, styles.SectionStyle.Render(fmt.Sprintf("Standards (%d)", len(l.Standards))))
	for _, s := range l.Standards {
		line := s.ID
		if s.Title != "" && s.Title != s.ID {
			line += styles.MutedStyle.Render("  " + s.Title)
		}
		fmt.Fprintln(&b, truncate.StringWithTail(line, uint(max(width-2, 10)), "…"))
	}

	for _, c := range resources.ExampleCategories() {
		stems := l.Examples.Get(c)
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, styles.SectionStyle.Render(fmt.Sprintf("%s (%d)", c.Kind()+"s", len(stems))))
		if len(stems) == 0 {
			fmt.Fprintln(&b, styles.MutedStyle.Render("(none)"))
			continue
		}
		fmt.Fprintln(&b, strings.Join(stems, "\n"))
	}

	fmt.Fprint(w, indent.String(b.String(), 2))
}

func newShowCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <standard_id> | show <category> <name>",
		Short: "Print a standard or an example",
		Long: `Show prints a standards document, or the example that <name> resolves to in
<category> (components, hooks, services, screens, themes).

Output is rendered as markdown on a terminal; --raw prints the file unchanged.`,
		Example: `  rnstd show project_structure
  rnstd show components Button`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, store, closeLog, err := a.setup()
			if err != nil {
				return err
			}
			defer closeLog()

			out := cmd.OutOrStdout()
			render := !raw && stdoutIsTerminal()

			if len(args) == 1 {
				content, err := store.ReadStandard(args[0])
				if err != nil {
					return err
				}
				if !render {
					_, err := io.WriteString(out, content)
					return err
				}
				info, err := resources.ParseStandard(args[0], content)
				if err != nil {
					return err
				}
				return printMarkdown(out, tui.StandardMarkdown(info))
			}

			category, err := resources.ParseCategory(args[0])
			if err != nil {
				return err
			}
			if !category.IsExample() {
				return fmt.Errorf("%q is not an example category", args[0])
			}
			ex, err := store.ReadExample(category, args[1])
			if err != nil {
				return err
			}
			if !render {
				_, err := io.WriteString(out, ex.Content)
				return err
			}
			return printMarkdown(out, tui.ExampleMarkdown(category, args[1], ex))
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the file without rendering")
	return cmd
}

func printMarkdown(w io.Writer, md string) error {
	rendered, err := tui.RenderMarkdown(md, tui.DetectGlamourStyle(100*time.Millisecond), min(terminalWidth(100), 120))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// checkReport is the result of inspecting a resources tree.
type checkReport struct {
	Root      string
	Standards map[string]bool
	Examples  map[resources.Category]int
	Missing   []string
	Notes     []string
}

func (r checkReport) OK() bool {
	return len(r.Missing) == 0
}

// checkResources reports the standards the tool catalog expects, the example count per
// category and the state of the configured git source.
func checkResources(cfg *config.Config, store *resources.Store) checkReport {
	report := checkReport{
		Root:      store.Root(),
		Standards: map[string]bool{},
		Examples:  map[resources.Category]int{},
	}

	if info, err := os.Stat(store.Root()); err != nil || !info.IsDir() {
		report.Missing = append(report.Missing, "resources directory "+store.Root())
	}

	for _, id := range resources.KnownStandards {
		_, err := store.ReadStandard(id)
		report.Standards[id] = err == nil
		if err != nil {
			report.Missing = append(report.Missing, filepath.ToSlash(filepath.Join(resources.Standards.Dir(), id+resources.StandardExtension)))
		}
	}

	index := store.ListExamples()
	for _, c := range resources.ExampleCategories() {
		report.Examples[c] = len(index.Get(c))
		if _, err := os.Stat(store.CategoryDir(c)); errors.Is(err, os.ErrNotExist) {
			report.Notes = append(report.Notes, fmt.Sprintf("%s directory %s does not exist", c.Kind(), c.Dir()))
			continue
		}
		if nested := store.NestedExamples(c); len(nested) > 0 {
			report.Notes = append(report.Notes, fmt.Sprintf("%d nested %s files are not listed and only match by exact name: %s",
				len(nested), c, strings.Join(nested, ", ")))
		}
	}

	if cfg.Source.RemoteURL != "" {
		status, err := source.CheckDirectory(store.Root(), cfg.Source.RemoteURL)
		note := fmt.Sprintf("git source %s: %s", cfg.Source.RemoteURL, status)
		if err != nil {
			note += " (" + err.Error() + ")"
		}
		report.Notes = append(report.Notes, note)
		if status == source.DirectoryStatusSameRepo {
			if dirty, err := source.IsDirty(store.Root()); err == nil && dirty {
				report.Notes = append(report.Notes, "resources directory has uncommitted changes; sync will skip it")
			}
		}
	}
	return report
}

func printReport(w io.Writer, r checkReport) {
	fmt.Fprintln(w, styles.SectionStyle.Render("Resources")+" "+r.Root)
	for _, id := range resources.KnownStandards {
		fmt.Fprintf(w, "  %-22s %s\n", id, styles.Status(r.Standards[id]))
	}
	for _, c := range resources.ExampleCategories() {
		fmt.Fprintf(w, "  %-22s %d\n", c, r.Examples[c])
	}
	for _, note := range r.Notes {
		fmt.Fprintln(w, styles.WarningStyle.Render("  note: ")+note)
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the resources directory holds what the tools serve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, store, closeLog, err := a.setup()
			if err != nil {
				return err
			}
			defer closeLog()

			report := checkResources(cfg, store)
			printReport(cmd.OutOrStdout(), report)
			if !report.OK() {
				logger.Warn("Resources check failed", "missing", report.Missing)
				return fmt.Errorf("resources check failed, missing: %s", strings.Join(report.Missing, ", "))
			}
			return nil
		},
	}
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse standards and examples interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, store, closeLog, err := a.setup()
			if err != nil {
				return err
			}
			defer closeLog()
			return tui.Run(cmd.Context(), store, logger)
		},
	}
}
