package acq

// Channel selects one of the analog inputs.
type Channel uint8

const (
	Temperature Channel = iota // LM35 on AN0
	Pulse                      // piezo on AN1
	Pressure                   // cuff pressure on AN2
	PPG                        // photoplethysmogram on AN3

	// NumChannels is the number of channels sampled every iteration.
	NumChannels = 4
)

// Channels lists the channels in sampling order.
var Channels = [NumChannels]Channel{Temperature, Pulse, Pressure, PPG}

var channelLabels = [NumChannels]string{"T", "PZ", "PR", "PPG"}

var channelNames = [NumChannels]string{"temperature", "pulse", "pressure", "ppg"}

// Label returns the field label used on the wire.
func (c Channel) Label() string {
	if int(c) < NumChannels {
		return channelLabels[c]
	}
	return "?"
}

// String returns a human readable channel name.
func (c Channel) String() string {
	if int(c) < NumChannels {
		return channelNames[c]
	}
	return "unknown"
}
