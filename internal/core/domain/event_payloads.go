package domain

import "encoding/json"

// ViewState is a lifecycle phase of a dashboard view.
type ViewState string

const (
	StateUnmounted    ViewState = "unmounted"
	StateInitializing ViewState = "initializing"
	StateReady        ViewState = "ready"
)

// ChartMountPayload asks the host to create a chart on a canvas.
type ChartMountPayload struct {
	ChartID string      `json:"chartId"`
	Canvas  string      `json:"canvas"`
	Config  ChartConfig `json:"config"`
}

// ChartRefPayload addresses an existing chart.
type ChartRefPayload struct {
	ChartID string `json:"chartId"`
	Canvas  string `json:"canvas"`
}

// ContentPayload replaces the text or markup of an element.
type ContentPayload struct {
	Element string `json:"element"`
	Content string `json:"content"`
}

// OptionsPayload replaces the options of a select control.
type OptionsPayload struct {
	Element string   `json:"element"`
	Options []Option `json:"options"`
}

// ProgressPayload sets the headline performance bar.
type ProgressPayload struct {
	Element string  `json:"element"`
	Percent float64 `json:"percent"`
	Band    Band    `json:"band"`
}

// StatePayload reports a lifecycle transition.
type StatePayload struct {
	State       ViewState `json:"state"`
	Placeholder bool      `json:"placeholder,omitempty"`
	Filters     *Filters  `json:"filters,omitempty"`
}

// ErrorPayload reports a rejected host message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ClientMessage is a message received from a host page.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MountMessage declares the page's element ids and chart library state.
type MountMessage struct {
	Elements     []string `json:"elements"`
	LibraryReady bool     `json:"libraryReady"`
	Filters      *Filters `json:"filters,omitempty"`
}

// FilterChangedMessage reports a new value of one filter control.
type FilterChangedMessage struct {
	Control string `json:"control"`
	Value   string `json:"value"`
}

// ApplyFiltersMessage carries the full selection read from the page.
type ApplyFiltersMessage struct {
	Filters *Filters `json:"filters,omitempty"`
}

// CardClickedMessage reports a click on a metric card.
type CardClickedMessage struct {
	Action string `json:"action"`
}
