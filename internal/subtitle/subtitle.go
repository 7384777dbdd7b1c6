// Package subtitle writes slide captions as an SRT sidecar aligned with the
// program timeline.
package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is a single cue.
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// FromTimeline builds entries for captions shown from starts[i] until the
// next clip begins, or total for the last one. Empty captions are skipped.
func FromTimeline(captions []string, starts []float64, total float64) ([]Entry, error) {
	if len(captions) != len(starts) {
		return nil, fmt.Errorf("%d captions for %d clips", len(captions), len(starts))
	}

	var entries []Entry
	for i, text := range captions {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		end := total
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if end <= starts[i] {
			continue
		}
		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			StartTime: toDuration(starts[i]),
			EndTime:   toDuration(end),
			Text:      text,
		})
	}
	return entries, nil
}

func toDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second)).Round(time.Millisecond)
}

// FormatTimestamp renders d as HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}

// Encode writes entries in SRT format.
func Encode(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n", e.Index, FormatTimestamp(e.StartTime), FormatTimestamp(e.EndTime), e.Text)
	}
	return bw.Flush()
}

// WriteFile writes entries to path.
func WriteFile(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
