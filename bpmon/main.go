package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gobpm/pkg/acq"
	"github.com/itohio/gobpm/pkg/config"
	"github.com/itohio/gobpm/pkg/monitor"
	"github.com/itohio/gobpm/pkg/scope"
	"github.com/itohio/gobpm/pkg/trace"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path (.yaml or .toml)")
		mockFlag   = flag.Bool("mock", false, "Use simulated device instead of serial port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.gobpm")

	window := application.NewWindow("BP Monitor")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		cfgPath: *configFlag,
		history: trace.New(cfg),
		window:  window,
		useMock: *mockFlag,
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(cfg)
	state.history.OnUpdate(state.onTraceUpdate)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	)

	window.SetOnClosed(func() {
		closeReadingChain(state.chain)
	})
	window.SetContent(content)
	window.ShowAndRun()
}

// readingChain tracks the components of the reading chain for graceful shutdown.
type readingChain struct {
	device    monitor.Device
	traceDone chan struct{} // Closed when the trace goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	cfgPath     string
	device      monitor.Device
	history     *trace.Trace
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	channelBtns [acq.NumChannels]*widget.Button
	useMock     bool
	chain       *readingChain // Current reading chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	restarts       func() int
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect, Settings and
// channel visibility buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	channelBox := container.NewHBox()
	for _, ch := range acq.Channels {
		btn := widget.NewButton(ch.Label(), func() {
			handleChannelToggle(state, ch)
		})
		state.channelBtns[ch] = btn
		channelBox.Add(btn)
	}
	updateChannelButtonStates(state)

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		channelBox,
		nil,
	)
}

// closeReadingChain gracefully closes the reading chain.
// Waits for the trace goroutine to drain the readings channel.
func closeReadingChain(chain *readingChain) {
	if chain == nil {
		return
	}

	// Close device - this will close the readings channel
	if chain.device != nil {
		chain.device.Close()
	}

	if chain.traceDone != nil {
		<-chain.traceDone
	}
}

// onTraceUpdate forwards the trace window to the scope at most every
// updateInterval.
func (state *appState) onTraceUpdate(readings []monitor.Reading, gaps int) {
	const updateInterval = 16 * time.Millisecond // ~60 FPS

	state.updateMu.Lock()
	now := time.Now()
	if now.Sub(state.lastUpdateTime) < updateInterval {
		state.updateMu.Unlock()
		return
	}
	state.lastUpdateTime = now
	restarts := state.restarts
	state.updateMu.Unlock()

	fyne.Do(func() {
		state.scopeWidget.UpdateData(readings, gaps)
		if restarts != nil {
			state.scopeWidget.SetRestarts(restarts())
		}
	})
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		disconnect(state)
		return
	}

	var device monitor.Device
	if state.useMock {
		device = monitor.NewMock(state.cfg)
		fmt.Println("Using simulated device")
	} else {
		device = monitor.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, state.cfg.Serial.BufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated device: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		fmt.Println("Connected to simulated device")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	state.history.Reset()
	state.history.ResetShutdown()
	state.scopeWidget.Clear()

	state.updateMu.Lock()
	state.restarts = device.Restarts
	state.updateMu.Unlock()

	traceDone := make(chan struct{})
	go func() {
		defer close(traceDone)
		state.history.Process(device.Readings())
	}()

	state.chain = &readingChain{
		device:    device,
		traceDone: traceDone,
	}
	state.connectBtn.SetIcon(theme.LogoutIcon())
}

// disconnect closes the current chain and resets the toolbar.
func disconnect(state *appState) {
	closeReadingChain(state.chain)
	state.chain = nil
	state.device = nil

	state.updateMu.Lock()
	state.restarts = nil
	state.updateMu.Unlock()

	state.connectBtn.SetIcon(theme.LoginIcon())
	if state.useMock {
		fmt.Println("Disconnected from simulated device")
	} else {
		fmt.Println("Disconnected from serial port")
	}
}
