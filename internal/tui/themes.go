package tui

import "github.com/charmbracelet/lipgloss"

// Theme is a dashboard color scheme. Colors are hex strings.
type Theme struct {
	Name            string
	PrimaryAccent   string
	SecondaryAccent string
	SuccessText     string
	ErrorText       string
	LabelText       string
	MutedText       string
	Border          string
	SelectedBg      string
}

// Themes holds the built-in color schemes by key.
var Themes = map[string]Theme{
	"default": {
		Name:            "Default",
		PrimaryAccent:   "#7D56F4",
		SecondaryAccent: "#04B575",
		SuccessText:     "#04B575",
		ErrorText:       "#FF5F87",
		LabelText:       "#A8A8A8",
		MutedText:       "#626262",
		Border:          "#7D56F4",
		SelectedBg:      "#3A3A3A",
	},
	"gruvbox": {
		Name:            "Gruvbox",
		PrimaryAccent:   "#FE8019",
		SecondaryAccent: "#FABD2F",
		SuccessText:     "#B8BB26",
		ErrorText:       "#FB4934",
		LabelText:       "#A89984",
		MutedText:       "#928374",
		Border:          "#D79921",
		SelectedBg:      "#3C3836",
	},
	"tokyonight": {
		Name:            "Tokyo Night",
		PrimaryAccent:   "#7AA2F7",
		SecondaryAccent: "#BB9AF7",
		SuccessText:     "#9ECE6A",
		ErrorText:       "#F7768E",
		LabelText:       "#A9B1D6",
		MutedText:       "#565F89",
		Border:          "#7AA2F7",
		SelectedBg:      "#292E42",
	},
	"catppuccin": {
		Name:            "Catppuccin",
		PrimaryAccent:   "#CBA6F7",
		SecondaryAccent: "#F5C2E7",
		SuccessText:     "#A6E3A1",
		ErrorText:       "#F38BA8",
		LabelText:       "#BAC2DE",
		MutedText:       "#6C7086",
		Border:          "#B4BEFE",
		SelectedBg:      "#313244",
	},
}

// ThemeNames is the cycle order for the theme key.
var ThemeNames = []string{"default", "gruvbox", "tokyonight", "catppuccin"}

// CurrentTheme is the active scheme.
var CurrentTheme = Themes["default"]

var currentThemeKey = "default"

var (
	titleStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
	bigValueStyle lipgloss.Style
	successStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	mutedStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	boxStyle      lipgloss.Style
	graphStyle    lipgloss.Style
)

func init() {
	regenerateStyles()
}

// SetTheme switches to the named theme. Unknown names are ignored.
func SetTheme(name string) {
	theme, ok := Themes[name]
	if !ok {
		return
	}
	CurrentTheme = theme
	currentThemeKey = name
	regenerateStyles()
}

// NextTheme returns the key after current in ThemeNames, wrapping around.
func NextTheme(current string) string {
	for i, name := range ThemeNames {
		if name == current {
			return ThemeNames[(i+1)%len(ThemeNames)]
		}
	}
	return ThemeNames[0]
}

func regenerateStyles() {
	t := CurrentTheme

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.PrimaryAccent)).
		MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.SecondaryAccent))

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.LabelText))

	valueStyle = lipgloss.NewStyle().
		Bold(true)

	bigValueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.PrimaryAccent))

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.SuccessText))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.ErrorText))

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.MutedText))

	selectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.PrimaryAccent)).
		Background(lipgloss.Color(t.SelectedBg))

	boxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		Padding(0, 1)

	graphStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.SecondaryAccent))
}
