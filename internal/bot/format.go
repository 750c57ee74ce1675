package bot

import (
	"fmt"
	"strings"
	"time"

	"garden_bot/internal/monitor"
	"garden_bot/internal/render"
)

// FormatStatus formats the monitor states for display.
func FormatStatus(statuses []monitor.Status) string {
	if len(statuses) == 0 {
		return "No monitor has run yet."
	}
	var b strings.Builder
	b.WriteString("Monitors:\n")
	for _, s := range statuses {
		next := s.LastRun.Add(s.Next)
		fmt.Fprintf(&b, "\n%s\n   last run %s\n   next run %s (in %s)\n",
			s.Task, render.FormatUnix(s.LastRun.Unix()), render.FormatUnix(next.Unix()), s.Next.Round(time.Second))
	}
	return b.String()
}
