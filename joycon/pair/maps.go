package pair

import "github.com/Alia5/joycore/joycon"

// buttonMap translates physical button bits into logical buttons for one
// half in one mode.
type buttonMap []struct {
	mask uint32
	btn  Button
}

// Combined and pro units map the hardware straight through. The rail
// buttons are covered by the grip in combined mode and stay unmapped.
var combinedLeft = buttonMap{
	{joycon.MaskDpadUp, BtnDpadUp},
	{joycon.MaskDpadDown, BtnDpadDown},
	{joycon.MaskDpadLeft, BtnDpadLeft},
	{joycon.MaskDpadRight, BtnDpadRight},
	{joycon.MaskL, BtnL},
	{joycon.MaskZL, BtnZL},
	{joycon.MaskMinus, BtnMinus},
	{joycon.MaskLStick, BtnThumbL},
	{joycon.MaskCapture, BtnCapture},
}

var combinedRight = buttonMap{
	{joycon.MaskA, BtnA},
	{joycon.MaskB, BtnB},
	{joycon.MaskX, BtnX},
	{joycon.MaskY, BtnY},
	{joycon.MaskR, BtnR},
	{joycon.MaskZR, BtnZR},
	{joycon.MaskPlus, BtnPlus},
	{joycon.MaskRStick, BtnThumbR},
	{joycon.MaskHome, BtnHome},
}

// Pro controllers carry both halves' bits in one report.
var proMap = append(append(buttonMap{}, combinedLeft...), combinedRight...)

// Solo halves are held sideways, rail up. The directional cluster rotates
// into the face-button diamond and the rail buttons become the shoulders.
// The real shoulder pair sits on the far edge and is reported as the
// triggers, matching what the hardware itself does when it pairs solo.
var leftSolo = buttonMap{
	{joycon.MaskDpadDown, BtnA},
	{joycon.MaskDpadLeft, BtnB},
	{joycon.MaskDpadRight, BtnX},
	{joycon.MaskDpadUp, BtnY},
	{joycon.MaskLeftSL, BtnL},
	{joycon.MaskLeftSR, BtnR},
	{joycon.MaskL, BtnZL},
	{joycon.MaskZL, BtnZR},
	{joycon.MaskMinus, BtnMinus},
	{joycon.MaskLStick, BtnThumbL},
	{joycon.MaskCapture, BtnCapture},
}

var rightSolo = buttonMap{
	{joycon.MaskB, BtnA},
	{joycon.MaskY, BtnB},
	{joycon.MaskA, BtnX},
	{joycon.MaskX, BtnY},
	{joycon.MaskRightSL, BtnL},
	{joycon.MaskRightSR, BtnR},
	{joycon.MaskR, BtnZL},
	{joycon.MaskZR, BtnZR},
	{joycon.MaskPlus, BtnPlus},
	{joycon.MaskRStick, BtnThumbL},
	{joycon.MaskHome, BtnHome},
}

// translate folds physical bits into a logical button set.
func (m buttonMap) translate(physical uint32) uint32 {
	var logical uint32
	for _, e := range m {
		if physical&e.mask != 0 {
			logical |= 1 << uint(e.btn)
		}
	}
	return logical
}

// mapsFor returns the button maps a unit uses for its left and right slots.
// Solo and pro units only populate one slot.
func mapsFor(mode Mode) (left, right buttonMap) {
	switch mode {
	case ModeCombined:
		return combinedLeft, combinedRight
	case ModeLeftSolo:
		return leftSolo, nil
	case ModeRightSolo:
		return nil, rightSolo
	case ModePro:
		return proMap, nil
	}
	return nil, nil
}
