// Package output renders command results as styled text, JSON, YAML or
// GitHub Actions annotations.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto   Mode = "auto"
	ModeText   Mode = "text"
	ModeJSON   Mode = "json"
	ModeYAML   Mode = "yaml"
	ModeGitHub Mode = "github"
)

// Renderer writes results to out and notices to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
	// width wraps violation descriptions in text mode; 0 disables wrapping.
	width int
}

// Option configures a Renderer.
type Option func(*rendererOptions)

type rendererOptions struct {
	noColor bool
	width   int
}

// WithNoColor disables colour regardless of the terminal.
func WithNoColor(noColor bool) Option {
	return func(o *rendererOptions) { o.noColor = noColor }
}

// WithWidth sets the wrap width instead of detecting the terminal's.
func WithWidth(width int) Option {
	return func(o *rendererOptions) { o.width = width }
}

// NewRenderer creates a renderer. The colour profile is detected from out
// and honours NO_COLOR.
func NewRenderer(out, errOut io.Writer, mode Mode, opts ...Option) *Renderer {
	var o rendererOptions
	for _, opt := range opts {
		opt(&o)
	}
	if mode == "" {
		mode = ModeAuto
	}

	lr := lipgloss.NewRenderer(out)
	profile := termenv.NewOutput(out).EnvColorProfile()
	if o.noColor {
		profile = termenv.Ascii
	}
	lr.SetColorProfile(profile)
	if o.width == 0 {
		o.width = terminalWidth(out)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: NewStyles(lr),
		width:  o.width,
	}
}

// EffectiveMode resolves auto: GitHub annotations inside Actions, text
// everywhere else.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return ModeGitHub
	}
	return ModeText
}

// Styles returns the styles bound to the output's colour profile.
func (r *Renderer) Styles() *Styles { return r.styles }

// Out returns the result writer.
func (r *Renderer) Out() io.Writer { return r.out }

// Println writes a line to the result writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Success writes a success notice.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render(msg))
}

// Warn writes a warning notice to the error writer.
func (r *Renderer) Warn(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("warning: "+msg))
}

// Error writes an error notice to the error writer.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("error: "+msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Structured writes v as JSON or YAML depending on the mode and reports
// whether it did.
func (r *Renderer) Structured(v any) (bool, error) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return true, r.JSON(v)
	case ModeYAML:
		return true, r.YAML(v)
	}
	return false, nil
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeText, ModeJSON, ModeYAML, ModeGitHub:
		return m, nil
	}
	return "", fmt.Errorf("unknown output mode %q (valid: auto, text, json, yaml, github)", s)
}
