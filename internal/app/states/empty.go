package states

import (
	"github.com/Faultbox/arscene/internal/engine/input"
	"github.com/Faultbox/arscene/internal/engine/ui2d"
	"github.com/Faultbox/arscene/internal/logger"
)

// EmptyState is shown while no experience is open. It prompts for one.
type EmptyState struct {
	open func()

	// Error is the last failure to open an experience, shown under the prompt.
	Error string
}

// NewEmptyState creates the prompt. open is called when the user asks to
// open an experience; it may be nil.
func NewEmptyState(open func(), errMsg string) *EmptyState {
	return &EmptyState{open: open, Error: errMsg}
}

// Enter is called when entering this state.
func (s *EmptyState) Enter() error {
	logger.Info("no experience open")
	return nil
}

// Exit is called when leaving this state.
func (s *EmptyState) Exit() error { return nil }

// Update is called every frame.
func (s *EmptyState) Update(float32) error { return nil }

// HandleKey leaves every key to the host.
func (s *EmptyState) HandleKey(input.Key) bool { return false }

// DrawOverlay draws the centered prompt.
func (s *EmptyState) DrawOverlay(ui Overlay) {
	width, height := ui.ScreenSize()
	w := float32(380)
	h := chromeH + 28 + 3*lineHeight + 3*4 + 8
	if s.Error != "" {
		h += lineHeight + 4
	}

	ui.BeginWindow("empty", (width-w)/2, (height-h)/2, w, h, "AR Viewer", false)
	ui.LabelCentered("No experience loaded", ui2d.ColorText)
	if s.Error != "" {
		ui.LabelCentered(clip(ui, s.Error, w-16), ui2d.ColorWarning)
	}
	ui.Spacer(4)
	if ui.Button("open", 0, "Open experience...") && s.open != nil {
		s.open()
	}
	ui.LabelCentered("Press O or drop a file here", ui2d.ColorTextDim)
	ui.EndWindow()
}
