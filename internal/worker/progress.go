package worker

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// Progress renders a single-line progress bar for a tile run and keeps the
// totals for the final summary.
type Progress struct {
	startTime time.Time
	output    io.Writer
	total     int
	completed int
	failed    int
	bytes     int64
	mu        sync.RWMutex
	enabled   bool
}

// NewProgress creates a progress tracker writing to w. A disabled tracker
// only counts.
func NewProgress(w io.Writer, total int, enabled bool) *Progress {
	return &Progress{
		total:     total,
		startTime: time.Now(),
		output:    w,
		enabled:   enabled && w != nil,
	}
}

// Update records the completion of a task.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	p.completed = completed
	p.total = total
	p.failed = failed
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// AddBytes adds to the count of encoded tile bytes.
func (p *Progress) AddBytes(n int) {
	p.mu.Lock()
	p.bytes += int64(n)
	p.mu.Unlock()
}

// Callback returns a ProgressFunc suitable for use with Pool.Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Print writes the current bar, overwriting the previous line.
func (p *Progress) Print() {
	p.mu.RLock()
	completed, total, failed := p.completed, p.total, p.failed
	elapsed := time.Since(p.startTime)
	p.mu.RUnlock()

	var rate float64
	var eta time.Duration
	if completed > 0 && elapsed > 0 {
		rate = float64(completed) / elapsed.Seconds()
		if rate > 0 {
			eta = time.Duration(float64(total-completed)/rate) * time.Second
		}
	}

	filled := 0
	if total > 0 {
		filled = min(barWidth, completed*barWidth/total)
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\r[%s] %d/%d tiles", bar, completed, total)
	if failed > 0 {
		fmt.Fprintf(&sb, " (%d failed)", failed)
	}
	fmt.Fprintf(&sb, " - %.1f tiles/sec", rate)
	if eta > 0 && completed < total {
		fmt.Fprintf(&sb, " - ETA: %s", formatDuration(eta))
	}
	if completed == total {
		fmt.Fprintf(&sb, " - Done in %s", formatDuration(elapsed))
	}
	sb.WriteString("          ")

	fmt.Fprint(p.output, sb.String())
}

// Done prints the final progress and a newline.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.output)
	}
}

// Summary returns a summary string of the completed work.
func (p *Progress) Summary() string {
	p.mu.RLock()
	completed, total, failed, size := p.completed, p.total, p.failed, p.bytes
	elapsed := time.Since(p.startTime)
	p.mu.RUnlock()

	var rate float64
	if elapsed.Seconds() > 0 {
		rate = float64(completed) / elapsed.Seconds()
	}

	return fmt.Sprintf("Rendered %d/%d tiles (%d failed, %s) in %s (%.1f tiles/sec)",
		completed-failed, total, failed, formatBytes(size), formatDuration(elapsed), rate)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, mins)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
