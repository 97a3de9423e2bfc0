package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section title and returns the next line's Y.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight + 2
}

// DrawLabelValue draws "label:" and its value in a column LabelWidth to the
// right, returning the next line's Y.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawBar draws a labelled bar filled to frac (clamped to [0, 1]) with text
// after it, in a row of the given width. fill overrides the theme colour
// when its alpha is non-zero.
func (r *Renderer) DrawBar(x, y, width int32, label string, frac float32, text string, fill rl.Color) int32 {
	frac = min(max(frac, 0), 1)
	if fill.A == 0 {
		fill = r.Theme.BarFill
	}

	const textW = 70
	barX := x + r.Theme.LabelWidth
	barW := max(width-r.Theme.LabelWidth-textW, 1)

	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+1, barW, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(barX, y+1, int32(float32(barW)*frac), r.Theme.BarHeight, fill)
	rl.DrawText(text, barX+barW+6, y, r.Theme.FontSize, r.Theme.ValueColor)

	return y + r.Theme.LineHeight + 2
}
