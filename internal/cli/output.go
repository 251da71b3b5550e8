package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vytor/revplan/internal/services"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes rows through a tabwriter and flushes once fn returns.
func (a *app) table(header []string, fn func(row func(cols ...any))) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fn(func(cols ...any) {
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = fmt.Sprint(c)
		}
		fmt.Fprintln(tw, strings.Join(parts, "\t"))
	})
	return tw.Flush()
}

func (a *app) printDay(day *services.DayView) error {
	if a.jsonOut {
		return a.printJSON(day)
	}
	fmt.Fprintf(a.out, "%s  planned %d min, completed %d min\n", day.Date, day.PlannedMinutes, day.CompletedMinutes)
	if len(day.Entries) == 0 {
		fmt.Fprintln(a.out, "  nothing scheduled")
		return nil
	}
	return a.table([]string{"  ENTRY", "ITEM", "SUBJECT", "MIN", "STATUS"}, func(row func(...any)) {
		for _, e := range day.Entries {
			row("  "+e.ID, e.Name, e.SubjectName, e.Duration, entryStatus(e))
		}
	})
}

func entryStatus(e services.EntryView) string {
	var tags []string
	switch {
	case e.Completed:
		tags = append(tags, "done")
	case e.MissedLogged:
		tags = append(tags, "missed")
	default:
		tags = append(tags, "open")
	}
	if e.IsDeadlinePrep {
		tags = append(tags, "prep")
	}
	return strings.Join(tags, ",")
}

func fprintf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
