package domain

// EventType defines the type of host-bound event.
type EventType string

const (
	EventChartMount   EventType = "CHART_MOUNT"
	EventChartDestroy EventType = "CHART_DESTROY"
	EventChartResize  EventType = "CHART_RESIZE"
	EventSetHTML      EventType = "SET_HTML"
	EventSetText      EventType = "SET_TEXT"
	EventSetOptions   EventType = "SET_OPTIONS"
	EventSetProgress  EventType = "SET_PROGRESS"
	EventNavigate     EventType = "NAVIGATE"
	EventState        EventType = "STATE"
	EventError        EventType = "ERROR"
	EventPong         EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type    EventType `json:"type"`
	ViewID  string    `json:"viewId"`
	Payload any       `json:"payload"`
}

// MessageType defines the type of message a host page sends.
type MessageType string

const (
	MessageMount         MessageType = "MOUNT"
	MessageLibraryReady  MessageType = "LIBRARY_READY"
	MessageFilterChanged MessageType = "FILTER_CHANGED"
	MessageApplyFilters  MessageType = "APPLY_FILTERS"
	MessageRefresh       MessageType = "REFRESH"
	MessageCardClicked   MessageType = "CARD_CLICKED"
	MessageResize        MessageType = "RESIZE"
	MessageUnmount       MessageType = "UNMOUNT"
	MessagePing          MessageType = "PING"
)
