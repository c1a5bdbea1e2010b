package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art and an optional subtitle, centred
// for the current terminal width. To change the art replace banner.txt.
func RenderBanner(subtitle string) string {
	return renderBanner(termWidth(), subtitle)
}

func renderBanner(width int, subtitle string) string {
	lines := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")
	if subtitle != "" {
		lines = append(lines, "", subtitle)
	}

	maxW := 0
	for _, l := range lines {
		maxW = max(maxW, lipgloss.Width(l))
	}

	pad := 0
	if width > maxW {
		pad = (width - maxW) / 2
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
