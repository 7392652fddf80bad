package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aihavenlabs/pathwei-admin/internal/pagination"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printTable writes a header and rows aligned in columns, trimming trailing
// whitespace from each line.
func printTable(w io.Writer, header []string, rows [][]string) error {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// footer renders "Showing 21-23 of 23  pages: 1 2 [3]".
func footer(p *pagination.State) string {
	info := p.PageInfo()
	current := p.State().CurrentPage
	pages := make([]string, 0, len(p.VisiblePages()))
	for _, n := range p.VisiblePages() {
		if n == current {
			pages = append(pages, "["+strconv.Itoa(n)+"]")
			continue
		}
		pages = append(pages, strconv.Itoa(n))
	}
	if info.TotalItems == 0 {
		return "Showing 0 of 0  pages: " + strings.Join(pages, " ")
	}
	return fmt.Sprintf("Showing %d-%d of %d  pages: %s", info.StartItem, info.EndItem, info.TotalItems, strings.Join(pages, " "))
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
