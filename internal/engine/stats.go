package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/slides2video/internal/system"
)

// Report summarises one render.
type Report struct {
	Build     string
	Slides    int
	Skipped   int
	Program   float64
	Preflight time.Duration
	Render    time.Duration
	Merge     time.Duration
	Total     time.Duration
	Host      system.HostReport
}

// Realtime is program seconds produced per wall-clock second.
func (r *Report) Realtime() float64 {
	if r.Total <= 0 {
		return 0
	}
	return r.Program / r.Total.Seconds()
}

// WriteTo prints the report in a human readable block.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Slides: %d (skipped %d)\n"+
			"Program: %.2fs\n"+
			"Total Time: %.2fs\n"+
			"Preflight: %.2fs\n"+
			"Rendering + Encoding: %.2fs\n"+
			"Merge: %.2fs\n"+
			"Realtime Factor: %.2fx\n"+
			"----------------------------\n",
		r.Build, r.Host, r.Slides, r.Skipped, r.Program,
		r.Total.Seconds(), r.Preflight.Seconds(), r.Render.Seconds(), r.Merge.Seconds(), r.Realtime(),
	)
	return int64(n), err
}

// line is the benchmark.log entry for the report.
func (r *Report) line(now time.Time, output string) string {
	return fmt.Sprintf("[%s] Build: %s | Output: %s | Slides: %d | Program: %.2fs | Total: %.2fs | Render: %.2fs | Merge: %.2fs | x%.2f\n",
		now.Format("2006-01-02 15:04:05"),
		r.Build,
		filepath.Base(output),
		r.Slides,
		r.Program,
		r.Total.Seconds(),
		r.Render.Seconds(),
		r.Merge.Seconds(),
		r.Realtime(),
	)
}

func (p *Project) logReport(r *Report) {
	r.WriteTo(os.Stdout)

	path := filepath.Join(p.Config.Paths.WorkDir, "benchmark.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("could not write benchmark log")
		return
	}
	defer f.Close()
	if _, err := f.WriteString(r.line(time.Now(), p.Config.Paths.Output)); err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("could not write benchmark log")
	}
}
