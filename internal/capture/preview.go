package capture

import "gocv.io/x/gocv"

// DefaultWindowTitle is the preview window title.
const DefaultWindowTitle = "HCS - preview"

// Preview displays frames and polls the exit key.
type Preview interface {
	// Show displays frame and reports whether the user asked to exit.
	Show(frame *gocv.Mat) (exit bool)
	Close() error
}

// Window is a Preview backed by an OpenCV highgui window. Frames are shown
// mirrored so the preview moves like a mirror while the pointer follows the hand.
type Window struct {
	window  *gocv.Window
	exitKey int
	mirror  gocv.Mat
}

// NewWindow opens a preview window. Pressing exitKey in it ends the loop.
func NewWindow(title string, exitKey rune) *Window {
	return &Window{
		window:  gocv.NewWindow(title),
		exitKey: int(exitKey),
		mirror:  gocv.NewMat(),
	}
}

func (w *Window) Show(frame *gocv.Mat) bool {
	gocv.Flip(*frame, &w.mirror, 1)
	w.window.IMShow(w.mirror)
	return w.window.WaitKey(1) == w.exitKey
}

func (w *Window) Close() error {
	w.mirror.Close()
	return w.window.Close()
}

// Headless is a Preview that shows nothing and never asks to exit.
// Without a window the loop ends on context cancellation or end of stream.
type Headless struct{}

func (Headless) Show(*gocv.Mat) bool { return false }

func (Headless) Close() error { return nil }
