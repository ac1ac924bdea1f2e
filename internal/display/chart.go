package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/pomotech/internal/cursor"
	"github.com/hammamikhairi/pomotech/internal/domain"
)

var (
	chartBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	chartTodayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)
)

// chartWidth is the length of the longest bar.
const chartWidth = 30

// RenderDay renders one day's counters on a single line.
func RenderDay(v cursor.View) string {
	line := fmt.Sprintf("%s  completed %d  breaks %d  cancelled %d",
		v.Date, v.Counts.Completed, v.Counts.Breaks, v.Counts.Cancelled)
	if v.AtToday {
		line += "  (today)"
	}
	return line
}

// RenderWeek renders the completed-work counts as horizontal bars, oldest
// first. Bars are scaled to the largest count; a week with no sessions
// draws no bars. The row for today is highlighted.
func RenderWeek(days []domain.DayCount, today domain.Date) string {
	scale := 1
	for _, d := range days {
		if d.Completed > scale {
			scale = d.Completed
		}
	}

	var b strings.Builder
	for _, d := range days {
		n := d.Completed * chartWidth / scale
		if d.Completed > 0 && n == 0 {
			n = 1
		}
		label := fmt.Sprintf("%s %s", weekdayLabel(d.Date), d.Date.String()[5:])
		bar := strings.Repeat("█", n)
		if d.Date == today {
			b.WriteString(chartTodayStyle.Render(fmt.Sprintf("%s *", label)))
		} else {
			b.WriteString(fmt.Sprintf("%s  ", label))
		}
		b.WriteString(" ")
		b.WriteString(chartBarStyle.Render(bar))
		b.WriteString(fmt.Sprintf(" %d\n", d.Completed))
	}
	return b.String()
}

func weekdayLabel(d domain.Date) string {
	return d.Weekday().String()[:3]
}
