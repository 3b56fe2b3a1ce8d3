package main

import (
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gobpm/pkg/acq"
)

// handleChannelToggle shows or hides a channel trace.
func handleChannelToggle(state *appState, ch acq.Channel) {
	if state.scopeWidget == nil {
		return
	}

	state.scopeWidget.SetVisible(ch, !state.scopeWidget.ChannelVisible(ch))
	updateChannelButtonStates(state)
}

// updateChannelButtonStates updates the visual state of channel buttons.
// Before the scope exists every channel shows as visible.
func updateChannelButtonStates(state *appState) {
	for _, ch := range acq.Channels {
		visible := true
		if state.scopeWidget != nil {
			visible = state.scopeWidget.ChannelVisible(ch)
		}
		updateChannelButton(state.channelBtns[ch], visible)
	}
}

// updateChannelButton updates a single channel button's visual state.
func updateChannelButton(btn *widget.Button, isOn bool) {
	if btn == nil {
		return
	}
	if isOn {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
