package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gobpm/pkg/monitor"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createAcquisitionTab(state),
		createDisplayTab(state),
		createSimulatorTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig writes the configuration back to the file it was loaded from.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// reconnect restarts the reading chain if a device is connected.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	disconnect(state)
	handleConnect(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := monitor.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			changed := false

			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}
				changed = state.cfg.Serial.Port != selectedPort
				state.cfg.Serial.Port = selectedPort
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				changed = changed || state.cfg.Serial.BaudRate != baud
				state.cfg.Serial.BaudRate = baud
			}

			saveConfig(state)
			if changed && !state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createAcquisitionTab creates the firmware loop configuration tab.
// These settings drive the simulated device.
func createAcquisitionTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Acquisition.Period.String())

	acqTimeEntry := widget.NewEntry()
	acqTimeEntry.SetText(state.cfg.Acquisition.AcquisitionTime.String())

	clockEntry := widget.NewEntry()
	clockEntry.SetText(strconv.FormatUint(uint64(state.cfg.Acquisition.ClockHz), 10))

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.FormatUint(uint64(state.cfg.Acquisition.BaudRate), 10))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Report Period", Widget: periodEntry},
			{Text: "ADC Acquisition Time", Widget: acqTimeEntry},
			{Text: "Oscillator (Hz)", Widget: clockEntry},
			{Text: "UART Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(periodEntry.Text); err == nil && d > 0 {
				state.cfg.Acquisition.Period = d
			}
			if d, err := time.ParseDuration(acqTimeEntry.Text); err == nil && d > 0 {
				state.cfg.Acquisition.AcquisitionTime = d
			}
			if hz, err := strconv.ParseUint(clockEntry.Text, 10, 32); err == nil && hz > 0 {
				state.cfg.Acquisition.ClockHz = uint32(hz)
			}
			if baud, err := strconv.ParseUint(baudEntry.Text, 10, 32); err == nil && baud > 0 {
				state.cfg.Acquisition.BaudRate = uint32(baud)
			}
			saveConfig(state)
			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Acquisition", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Display.WindowSeconds))

	maxPointsEntry := widget.NewEntry()
	maxPointsEntry.SetText(strconv.Itoa(state.cfg.Display.MaxPoints))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Max Points", Widget: maxPointsEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.Display.WindowSeconds = ws
				state.history.SetWindow(time.Duration(ws * float64(time.Second)))
			}
			if mp, err := strconv.Atoi(maxPointsEntry.Text); err == nil && mp > 0 {
				state.cfg.Display.MaxPoints = mp
				state.scopeWidget.SetMaxPoints(mp)
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Display", form)
}

// createSimulatorTab creates the simulated sensor configuration tab.
func createSimulatorTab(state *appState) *container.TabItem {
	sim := &state.cfg.Sim

	heartRateEntry := widget.NewEntry()
	heartRateEntry.SetText(fmt.Sprintf("%.0f", sim.HeartRate))

	bodyTempEntry := widget.NewEntry()
	bodyTempEntry.SetText(fmt.Sprintf("%.1f", sim.BodyTemp))

	cuffPeakEntry := widget.NewEntry()
	cuffPeakEntry.SetText(fmt.Sprintf("%.0f", sim.CuffPeak))

	cuffCycleEntry := widget.NewEntry()
	cuffCycleEntry.SetText(sim.CuffCycle.String())

	systolicEntry := widget.NewEntry()
	systolicEntry.SetText(fmt.Sprintf("%.0f", sim.Systolic))

	diastolicEntry := widget.NewEntry()
	diastolicEntry.SetText(fmt.Sprintf("%.0f", sim.Diastolic))

	noiseLevelEntry := widget.NewEntry()
	noiseLevelEntry.SetText(fmt.Sprintf("%.4f", sim.NoiseLevel))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Heart Rate (bpm)", Widget: heartRateEntry},
			{Text: "Body Temperature (°C)", Widget: bodyTempEntry},
			{Text: "Cuff Peak (mmHg)", Widget: cuffPeakEntry},
			{Text: "Cuff Cycle", Widget: cuffCycleEntry},
			{Text: "Systolic (mmHg)", Widget: systolicEntry},
			{Text: "Diastolic (mmHg)", Widget: diastolicEntry},
			{Text: "Noise Level (V)", Widget: noiseLevelEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(heartRateEntry.Text, 64); err == nil {
				sim.HeartRate = v
			}
			if v, err := strconv.ParseFloat(bodyTempEntry.Text, 64); err == nil {
				sim.BodyTemp = v
			}
			if v, err := strconv.ParseFloat(cuffPeakEntry.Text, 64); err == nil {
				sim.CuffPeak = v
			}
			if d, err := time.ParseDuration(cuffCycleEntry.Text); err == nil {
				sim.CuffCycle = d
			}
			if v, err := strconv.ParseFloat(systolicEntry.Text, 64); err == nil {
				sim.Systolic = v
			}
			if v, err := strconv.ParseFloat(diastolicEntry.Text, 64); err == nil {
				sim.Diastolic = v
			}
			if v, err := strconv.ParseFloat(noiseLevelEntry.Text, 64); err == nil {
				sim.NoiseLevel = v
			}
			saveConfig(state)
			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Simulator", form)
}
