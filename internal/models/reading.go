package models

import "time"

// Reading is one persisted row of all channel values at a point in time.
type Reading struct {
	ID        int64     `json:"id"`
	Voltage   float64   `json:"voltage"`
	Current   float64   `json:"current"`
	Power     float64   `json:"power"`
	Energy    float64   `json:"energy"`
	Frequency float64   `json:"frequency"`
	PF        float64   `json:"pf"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReading copies the sensor channels of s into a record stamped at ts.
func NewReading(s Snapshot, ts time.Time) Reading {
	return Reading{
		Voltage:   s.Voltage,
		Current:   s.Current,
		Power:     s.Power,
		Energy:    s.Energy,
		Frequency: s.Frequency,
		PF:        s.PF,
		Timestamp: ts,
	}
}
