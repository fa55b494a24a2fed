package downloader

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// ConsoleProgress renders a single-line console progress indicator. Its
// Report method matches ProgressFunc, so it plugs straight into Fetch.
type ConsoleProgress struct {
	Name string
	Out  io.Writer

	lastPrint time.Time
}

func NewConsoleProgress(name string) *ConsoleProgress {
	return &ConsoleProgress{Name: name, Out: os.Stdout}
}

// Report prints at most every 100ms, except the final chunk which always
// prints so the line ends at 100%.
func (c *ConsoleProgress) Report(written, total int64) {
	final := total > 0 && written >= total
	if !final && time.Since(c.lastPrint) < 100*time.Millisecond {
		return
	}
	c.lastPrint = time.Now()

	if total > 0 {
		percent := float64(written) / float64(total) * 100
		fmt.Fprintf(c.out(), "\r[%s] %.2f%% (%s/%s)   ",
			c.Name, percent, humanize.IBytes(uint64(written)), humanize.IBytes(uint64(total)))
	} else {
		fmt.Fprintf(c.out(), "\r[%s] Downloading... %s   ", c.Name, humanize.IBytes(uint64(written)))
	}
}

// Finish terminates the progress line.
func (c *ConsoleProgress) Finish() {
	fmt.Fprintln(c.out())
}

func (c *ConsoleProgress) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}
