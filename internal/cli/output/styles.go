package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the commands.
type Styles struct {
	Header  lipgloss.Style
	Path    lipgloss.Style
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Code    lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Tree output of the parse command.
	Kind lipgloss.Style
	Raw  lipgloss.Style
	Meta lipgloss.Style
}

// NewStyles builds the styles on r so they follow its colour profile.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Path:    r.NewStyle().Bold(true),
		Pass:    r.NewStyle().Foreground(lipgloss.Color("10")),
		Fail:    r.NewStyle().Foreground(lipgloss.Color("9")),
		Code:    r.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    r.NewStyle().Bold(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Kind:    r.NewStyle().Foreground(lipgloss.Color("13")),
		Raw:     r.NewStyle().Foreground(lipgloss.Color("11")),
		Meta:    r.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}
