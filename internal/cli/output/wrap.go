package output

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// terminalWidth returns the column count of out, or 0 when out is not a
// terminal.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return 0
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(int(fd)) //nolint:gosec // G115: file descriptors fit in int
	if err != nil {
		return 0
	}
	return w
}

// wrapText breaks s at spaces so no line exceeds width display columns.
// Continuation lines start with indent. Words wider than width stay whole.
func wrapText(s string, width int, indent string) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	col := 0
	for i, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)
		switch {
		case i == 0:
		case col+1+w > width:
			b.WriteString("\n")
			b.WriteString(indent)
			col = 0
		default:
			b.WriteByte(' ')
			col++
		}
		b.WriteString(word)
		col += w
	}
	return b.String()
}
