package cli

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/syndexlabs/syndex-cli/internal/core/services"
)

// embedProgress renders a progress bar over the embedding phase. It is
// silent when stderr is not a terminal.
type embedProgress struct {
	out     io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

// newProgress creates a progress reporter writing to out. The bar is
// only drawn when stderr is an interactive terminal.
func newProgress(out io.Writer) services.ProgressReporter {
	return &embedProgress{
		out:     out,
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

func (p *embedProgress) Start(total int) {
	if !p.enabled || total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("embedding"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *embedProgress) Increment() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *embedProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
