package logger

import (
	"fmt"
	"sync"

	"github.com/fatih/color"
)

// Progress is an ASCII progress bar for sample runs.
type Progress struct {
	mu      sync.RWMutex
	current int
	total   int
	width   int
	color   bool
	prefix  string
}

// NewProgress creates a progress bar over total items rendered width
// characters wide.
func NewProgress(total, width int, enableColor bool) *Progress {
	if width < 1 {
		width = 10
	}
	return &Progress{total: total, width: width, color: enableColor}
}

// SetPrefix sets the text rendered before the bar.
func (p *Progress) SetPrefix(prefix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefix = prefix
}

// Increment advances the bar by one item.
func (p *Progress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
}

// Percentage returns completion in 0..100.
func (p *Progress) Percentage() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.percentageLocked()
}

func (p *Progress) percentageLocked() int {
	if p.total == 0 {
		return 0
	}
	perc := (p.current * 100) / p.total
	if perc > 100 {
		perc = 100
	}
	if perc < 0 {
		perc = 0
	}
	return perc
}

// Render returns the bar as a single line, e.g.
// "run [=====     ] 12/24 (50%)".
func (p *Progress) Render() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	perc := p.percentageLocked()
	filled := (perc * p.width) / 100

	bar := make([]byte, 0, p.width+2)
	bar = append(bar, '[')
	for i := 0; i < p.width; i++ {
		if i < filled {
			bar = append(bar, '=')
		} else {
			bar = append(bar, ' ')
		}
	}
	bar = append(bar, ']')

	line := fmt.Sprintf("%s%s %d/%d (%d%%)", p.prefix, bar, p.current, p.total, perc)
	if p.color {
		if perc == 100 {
			return progressDone.Sprint(line)
		}
		return progressActive.Sprint(line)
	}
	return line
}

var (
	progressActive = color.New(color.FgCyan)
	progressDone   = color.New(color.FgGreen)
)
