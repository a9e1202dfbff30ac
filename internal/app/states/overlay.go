package states

import (
	"github.com/Faultbox/arscene/internal/engine/ui2d"
)

// Overlay is the immediate-mode UI the states draw with. *ui2d.Context
// implements it.
type Overlay interface {
	ScreenSize() (float32, float32)
	BeginWindow(id string, x, y, w, h float32, title string, closable bool) (closed bool)
	EndWindow()
	Button(id string, width float32, label string) bool
	ButtonAt(id string, rect ui2d.Rect, label string) bool
	Label(text string)
	LabelColored(text string, color ui2d.Color)
	LabelCentered(text string, color ui2d.Color)
	ProgressBar(fraction, height float32, label string)
	Spacer(height float32)
	MeasureText(text string, scale float32) (float32, float32)
}

var _ Overlay = (*ui2d.Context)(nil)

const (
	margin      = float32(12)
	controlW    = float32(72)
	controlH    = float32(40)
	controlGap  = float32(8)
	infoW       = float32(320)
	noticeW     = float32(420)
	progressW   = float32(260)
	lineHeight  = float32(17)
	chromeH     = float32(22 + 8*2)
)

// clip shortens text to fit width, marking the cut with "...".
func clip(ui Overlay, text string, width float32) string {
	if w, _ := ui.MeasureText(text, 1); w <= width {
		return text
	}
	r := []rune(text)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if w, _ := ui.MeasureText(string(r)+"...", 1); w <= width {
			break
		}
	}
	return string(r) + "..."
}
