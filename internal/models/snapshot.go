package models

// Channel names one measured quantity. The value matches the second segment of
// the sensor topic (sensor/<channel>).
type Channel string

const (
	ChannelVoltage   Channel = "voltage"
	ChannelCurrent   Channel = "current"
	ChannelPower     Channel = "power"
	ChannelEnergy    Channel = "energy"
	ChannelFrequency Channel = "frequency"
	ChannelPF        Channel = "pf"
)

// Channels lists every sensor channel in storage column order.
var Channels = []Channel{
	ChannelVoltage,
	ChannelCurrent,
	ChannelPower,
	ChannelEnergy,
	ChannelFrequency,
	ChannelPF,
}

// Snapshot is the latest known value per channel plus the confirmed switch state.
type Snapshot struct {
	Voltage      float64 `json:"voltage"`   // V
	Current      float64 `json:"current"`   // A
	Power        float64 `json:"power"`     // W
	Energy       float64 `json:"energy"`    // kWh (meter counter)
	Frequency    float64 `json:"frequency"` // Hz
	PF           float64 `json:"pf"`
	SwitchStatus int     `json:"sw01Status"` // 0 | 1
}

// Set writes v into the field for ch. It reports false for an unknown channel.
func (s *Snapshot) Set(ch Channel, v float64) bool {
	switch ch {
	case ChannelVoltage:
		s.Voltage = v
	case ChannelCurrent:
		s.Current = v
	case ChannelPower:
		s.Power = v
	case ChannelEnergy:
		s.Energy = v
	case ChannelFrequency:
		s.Frequency = v
	case ChannelPF:
		s.PF = v
	default:
		return false
	}
	return true
}

// IsChannel reports whether name is a known sensor channel.
func IsChannel(name string) bool {
	for _, ch := range Channels {
		if string(ch) == name {
			return true
		}
	}
	return false
}
