// Package apitypes holds the wire types shared by the joycore management
// API server and its clients.
package apitypes

import "fmt"

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Controller describes one attached physical controller.
type Controller struct {
	ID       int    `json:"id"`
	Kind     string `json:"kind"`
	State    string `json:"state"`
	MAC      string `json:"mac"`
	Battery  string `json:"battery"`
	Charging bool   `json:"charging"`
}

type ControllerListResponse struct {
	Controllers []Controller `json:"controllers"`
}

// Unit describes one logical gamepad formed by the pairing layer.
type Unit struct {
	Mode        string `json:"mode"`
	Player      int    `json:"player"`
	Controllers []int  `json:"controllers"`
}

type UnitListResponse struct {
	Units []Unit `json:"units"`
}

// RumbleRequest sets the vibration state of one controller. Frequencies are
// in hertz, amplitudes in [0, 1000]. An all-zero request stops rumble.
type RumbleRequest struct {
	LowFreq  uint16 `json:"lowFreq"`
	HighFreq uint16 `json:"highFreq"`
	Amp      uint16 `json:"amp"`
}

type RumbleResponse struct {
	ID int `json:"id"`
}

// LightsRequest sets the player indicator LEDs. Bits 0..3 are solid,
// 4..7 flashing.
type LightsRequest struct {
	Pattern byte `json:"pattern"`
}

type LightsResponse struct {
	ID int `json:"id"`
}

// HomeLightRequest sets the home button light intensity (0..15).
type HomeLightRequest struct {
	Intensity byte `json:"intensity"`
}

type HomeLightResponse struct {
	ID int `json:"id"`
}

// Event is one entry in the input event stream. Type selects which of the
// optional fields are meaningful.
type Event struct {
	Type   string `json:"type"` // button, stick, battery, streaming, detach
	Player int    `json:"player,omitempty"`
	Mode   string `json:"mode,omitempty"`

	Button  string `json:"button,omitempty"`
	Pressed bool   `json:"pressed,omitempty"`

	Axis  string `json:"axis,omitempty"`
	Value int32  `json:"value,omitempty"`

	Battery  string `json:"battery,omitempty"`
	Charging bool   `json:"charging,omitempty"`

	Controller int    `json:"controller,omitempty"`
	Kind       string `json:"kind,omitempty"`
}
