package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/ui/output"
	"go.trai.ch/nixster/internal/ui/style"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Format selects how results are written to standard output.
type Format string

const (
	// FormatAuto is FormatPretty on a terminal and FormatJSON otherwise.
	FormatAuto   Format = ""
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

const descriptionWidth = 80

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatAuto, FormatPretty, FormatJSON, FormatYAML:
		return f, nil
	default:
		return FormatAuto, zerr.With(zerr.Wrap(domain.ErrUnknownFormat, "parse format"), "format", s)
	}
}

// write encodes value to w in format. pretty renders the human form and may be
// nil, in which case YAML is used.
func write(w io.Writer, format Format, value any, pretty func(io.Writer) error) error {
	if format == FormatAuto {
		format = FormatJSON
		if output.IsTerminal(w) {
			format = FormatPretty
		}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", " ")
		if err := enc.Encode(value); err != nil {
			return zerr.Wrap(err, "failed to encode output")
		}
		return nil
	case FormatPretty:
		if pretty != nil {
			return pretty(w)
		}
		fallthrough
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return zerr.Wrap(err, "failed to encode output")
		}
		return enc.Close()
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownFormat, "write output"), "format", string(format))
	}
}

// newTable returns a borderless table whose header row is styled for w.
func newTable(w io.Writer, headers ...string) *table.Table {
	s := style.For(w)
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Muted
			}
			return lipgloss.NewStyle()
		})
}

func render(w io.Writer, t *table.Table) error {
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// describe returns the description of env, or a summary of what it changes when
// it has none.
func describe(env domain.Environment) string {
	descr := env.Description
	if descr == "" {
		switch {
		case len(env.Removes) > 0:
			descr = fmt.Sprintf("Removes %d packages.", len(env.Removes))
		case len(env.Adds) > 0:
			descr = fmt.Sprintf("Adds %d packages.", len(env.Adds))
		case len(env.Extends) > 0:
			descr = fmt.Sprintf("Extends %s.", strings.Join(env.Extends, ", "))
		}
	}
	return ellipsize(descr, descriptionWidth)
}

func ellipsize(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func renderEnvironments(w io.Writer, envs []domain.EnvironmentSummary) error {
	s := style.For(w)
	t := newTable(w, "READY", "NAME", "DESCRIPTION")
	for _, env := range envs {
		t.Row(s.Built(env.Built), s.Name.Render(env.Name), describe(env.Environment))
	}
	return render(w, t)
}

func renderSearch(w io.Writer, term string, results []domain.SearchResult) error {
	s := style.For(w)
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("No packages found matching %q", term)))
		return err
	}
	t := newTable(w, "NAME", "TYPE", "VERSION", "CHANNEL", "DESCRIPTION")
	for _, r := range results {
		t.Row(s.Name.Render(r.Name), r.Type, r.Version, r.Channel, ellipsize(r.Description, descriptionWidth))
	}
	return render(w, t)
}

func renderMatches(w io.Writer, entries []domain.CatalogEntry) error {
	s := style.For(w)
	t := newTable(w, "NAME", "VERSION", "CHANNEL", "ATTRIBUTE", "PRIORITY")
	for _, e := range entries {
		t.Row(s.Name.Render(e.Name), e.Version, e.Channel, e.Attribute, fmt.Sprint(e.Priority))
	}
	return render(w, t)
}

func renderPackages(w io.Writer, pkgs []string) error {
	s := style.For(w)
	for _, pkg := range pkgs {
		if _, err := fmt.Fprintln(w, s.Name.Render(pkg)); err != nil {
			return err
		}
	}
	return nil
}
