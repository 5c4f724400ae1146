package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Digital-Shane/tv-renamer/internal/core"
	"github.com/Digital-Shane/tv-renamer/internal/theme"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
)

const sourceColumnWidth = 32

// planPrinter writes planned renames as "source -> target" lines grouped by
// season, shortened to base names.
type planPrinter struct {
	out    io.Writer
	styled bool
	theme  theme.Theme
	width  int
	season int
}

func newPlanPrinter(out io.Writer, styled bool) *planPrinter {
	th := theme.Plain()
	if styled {
		th = theme.Default()
	}
	return &planPrinter{
		out:    out,
		styled: styled,
		theme:  th,
		width:  sourceColumnWidth,
		season: -1,
	}
}

// Planned implements core.Reporter.
func (p *planPrinter) Planned(planned core.Planned) {
	if planned.Season != p.season {
		p.season = planned.Season
		fmt.Fprintln(p.out, p.header(planned.Season))
	}
	fmt.Fprintln(p.out, p.line(planned))
}

// DryRunBanner announces a preview ahead of the plan.
func (p *planPrinter) DryRunBanner() {
	msg := "Dry run: no files will be renamed"
	if p.styled {
		msg = p.theme.Icon("dryrun") + " " + p.theme.BadgeStyle(theme.BadgeInfo).Render(msg)
	}
	fmt.Fprintln(p.out, msg)
}

// Summary prints the per season table of a run.
func (p *planPrinter) Summary(summary core.Summary) {
	fmt.Fprintln(p.out, renderSummary(summary, p.theme))
}

func (p *planPrinter) header(season int) string {
	title := "Season " + strconv.Itoa(season)
	if !p.styled {
		return title
	}
	return p.theme.Icon("season") + " " + p.theme.HeaderStyle().Render(title)
}

func (p *planPrinter) line(planned core.Planned) string {
	source := filepath.Base(planned.Source)
	target := filepath.Base(planned.Target)
	if runewidth.StringWidth(source) < p.width {
		source = runewidth.FillRight(source, p.width)
	}

	arrow := "->"
	note := ""
	if planned.Overwrite {
		note = " (overwrite)"
	}

	if p.styled {
		source = p.theme.SourceStyle().Render(source)
		arrow = p.theme.ArrowStyle().Render(p.theme.Icon("arrow"))
		target = p.theme.TargetStyle().Render(target)
		if planned.Overwrite {
			note = " " + p.theme.Icon("overwrite") + " " + p.theme.BadgeStyle(theme.BadgeWarning).Render("overwrite")
		}
	}

	return "  " + source + " " + arrow + " " + target + note
}

// shouldStyle reports whether out is a terminal that accepts styling.
func shouldStyle(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptConfirmer asks on out and reads one answer line from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

// ConfirmOverwrite implements core.Confirmer. Only "y" and "yes" accept; end
// of input declines.
func (c *promptConfirmer) ConfirmOverwrite(source, target string) (bool, error) {
	fmt.Fprintf(c.out, "%s already exists. Overwrite it with %s? [y/N] ", target, filepath.Base(source))

	answer, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(c.out)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// seasonStatus names the icon for a season report: every episode already
// named, every episode handled, or stopped part way.
func seasonStatus(r core.SeasonReport) string {
	switch {
	case r.Episodes > 0 && r.Unchanged == r.Episodes:
		return "unchanged"
	case max(r.Planned, r.Renamed)+r.Unchanged >= r.Episodes:
		return "success"
	default:
		return "error"
	}
}

// renderSummary tabulates the per season counts of a run.
func renderSummary(summary core.Summary, th theme.Theme) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Season", "Episodes", "Planned", "Renamed", "Unchanged", "Status"})

	for _, s := range summary.Seasons {
		tw.AppendRow(table.Row{s.Season, s.Episodes, s.Planned, s.Renamed, s.Unchanged, th.Icon(seasonStatus(s))})
	}

	total := summary.Totals()
	tw.AppendFooter(table.Row{"Total", total.Episodes, total.Planned, total.Renamed, total.Unchanged, ""})

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}}
	for i := 2; i <= 5; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignFooter: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
