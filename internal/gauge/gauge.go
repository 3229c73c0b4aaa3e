package gauge

import (
	"math"
	"strconv"
)

// ID identifies one of the two gauges.
type ID int

const (
	// Sensor is fed by the device samples.
	Sensor ID = iota
	// Command is fed by the operator command key.
	Command
)

func (id ID) String() string {
	switch id {
	case Sensor:
		return "sensor"
	case Command:
		return "command"
	}
	return "gauge(" + strconv.Itoa(int(id)) + ")"
}

// calibration of raw sensor units to display fraction.
const (
	offset = 0.9
	gain   = 1.70
	bias   = 0.7
)

// Transform maps a raw sample to a fill level.
// The result is not clamped: samples above ~0.94 give negative levels.
func Transform(sample float64) float64 {
	return offset - (sample*gain - bias)
}

// Format renders a fill level as a bare integer percentage, e.g. 0.75 -> "75".
func Format(level float64) string {
	return strconv.Itoa(int(math.Round(level * 100)))
}

// State is a single gauge.
type State struct {
	FillLevel float64
}

// Model holds both gauges. Fill levels are never clamped.
type Model struct {
	gauges [2]State
}

func NewModel() *Model {
	return &Model{}
}

// UpdateSensorGauge applies a parsed sample to the sensor gauge.
func (m *Model) UpdateSensorGauge(sample float64) {
	m.gauges[Sensor].FillLevel = Transform(sample)
}

// UpdateCommandGauge adds delta to the command gauge.
func (m *Model) UpdateCommandGauge(delta float64) {
	m.gauges[Command].FillLevel += delta
}

// Level returns the fill level of the given gauge.
func (m *Model) Level(id ID) float64 {
	return m.gauges[id].FillLevel
}

// SetLevel overwrites the fill level of the given gauge.
func (m *Model) SetLevel(id ID, level float64) {
	m.gauges[id].FillLevel = level
}

// Bump adds delta to the given gauge without going through the transform.
func (m *Model) Bump(id ID, delta float64) {
	m.gauges[id].FillLevel += delta
}
