package detector

// fingerTips holds the tip landmark of thumb, index, middle, ring and pinky.
var fingerTips = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// FingersUp reports which fingers are extended, ordered thumb to pinky.
//
// The thumb is judged horizontally against its IP joint, in a direction that
// depends on the hand type. The other fingers are extended when the tip is
// above (lower Y than) the PIP joint.
func (h *Hand) FingersUp() [5]bool {
	var up [5]bool

	tip := h.Landmarks[fingerTips[0]]
	ip := h.Landmarks[fingerTips[0]-1]
	if h.Type == HandRight {
		up[0] = tip.X > ip.X
	} else {
		up[0] = tip.X < ip.X
	}

	for i := 1; i < len(fingerTips); i++ {
		up[i] = h.Landmarks[fingerTips[i]].Y < h.Landmarks[fingerTips[i]-2].Y
	}

	return up
}

// ExtendedFingers returns how many fingers are extended.
func (h *Hand) ExtendedFingers() int {
	n := 0
	for _, up := range h.FingersUp() {
		if up {
			n++
		}
	}
	return n
}
