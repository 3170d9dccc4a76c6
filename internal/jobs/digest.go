// Package jobs runs the scheduled background work: the project digest sent
// to chat webhooks and the local-mode mirror sync.
package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/demodash/internal/dashstate"
	"github.com/zulandar/demodash/internal/format"
	"github.com/zulandar/demodash/internal/listing"
	"github.com/zulandar/demodash/internal/metrics"
	"github.com/zulandar/demodash/internal/models"
)

// DueWindow is how far ahead the digest looks for pending RFIs.
const DueWindow = 7

// Sidebar colors for chat messages.
const (
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
)

// Digest summarises what needs attention on one day.
type Digest struct {
	Date    time.Time
	Metrics metrics.Metrics
	// Pending RFIs that are overdue or due within DueWindow days.
	RFIs []dashstate.RFIRow
	// Open tasks due this week.
	Tasks []dashstate.TaskRow
	// Overdue counts the RFIs in RFIs whose due date has passed.
	Overdue int
}

// BuildDigest collects the digest for now's calendar day from snap.
// Returns nil when no RFI or task needs attention.
func BuildDigest(snap dashstate.Snapshot, now time.Time) *Digest {
	today := models.CalendarDay(now)
	d := &Digest{Date: today, Metrics: snap.Metrics}

	for _, r := range listing.SortRFIs(snap.RFIs) {
		if r.Status != models.RFIStatusPending {
			continue
		}
		due, ok := models.ParseDate(r.DueDate)
		if !ok {
			continue
		}
		days := format.DaysBetween(today, due)
		if days > DueWindow {
			continue
		}
		if days < 0 {
			d.Overdue++
		}
		d.RFIs = append(d.RFIs, dashstate.RFIRow{
			RFI:           r,
			ProjectName:   snap.ProjectName(r.ProjectID),
			DaysRemaining: format.DaysRemaining(r.DueDate, now),
		})
	}
	for _, t := range listing.WeekTasks(snap.Tasks, now) {
		d.Tasks = append(d.Tasks, dashstate.TaskRow{Task: t, ProjectName: snap.ProjectName(t.ProjectID)})
	}

	if len(d.RFIs) == 0 && len(d.Tasks) == 0 {
		return nil
	}
	return d
}

// Title is the headline of the digest message.
func (d *Digest) Title() string {
	return "Project digest for " + format.Day(d.Date)
}

// Color is the sidebar color: warning when an RFI is overdue.
func (d *Digest) Color() string {
	if d.Overdue > 0 {
		return ColorWarning
	}
	return ColorInfo
}

// Summary is the one-line metrics overview.
func (d *Digest) Summary() string {
	return fmt.Sprintf("Active value %s | %d pending RFIs | %d current bids | %d%% complete",
		format.Currency(d.Metrics.ActiveValue), d.Metrics.PendingRFIs,
		d.Metrics.CurrentBids, d.Metrics.CompletionRate)
}

// RFILines renders one line per RFI.
func (d *Digest) RFILines() []string {
	lines := make([]string, 0, len(d.RFIs))
	for _, r := range d.RFIs {
		lines = append(lines, fmt.Sprintf("%s (%s), %s, %s", r.Title, r.ProjectName, r.Priority, r.DaysRemaining))
	}
	return lines
}

// TaskLines renders one line per task.
func (d *Digest) TaskLines() []string {
	lines := make([]string, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		lines = append(lines, fmt.Sprintf("%s (%s), %s, due %s", t.Title, t.ProjectName, t.Priority, format.Date(t.DueDate)))
	}
	return lines
}

// Body renders the summary and both lists as plain text.
func (d *Digest) Body() string {
	var b strings.Builder
	b.WriteString(d.Summary())
	if lines := d.RFILines(); len(lines) > 0 {
		b.WriteString("\n\nRFIs due:")
		for _, l := range lines {
			b.WriteString("\n- " + l)
		}
	}
	if lines := d.TaskLines(); len(lines) > 0 {
		b.WriteString("\n\nThis week's tasks:")
		for _, l := range lines {
			b.WriteString("\n- " + l)
		}
	}
	return b.String()
}

// Text is the title followed by the body.
func (d *Digest) Text() string {
	return d.Title() + "\n" + d.Body()
}
