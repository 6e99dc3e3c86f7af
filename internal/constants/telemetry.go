package constants

// StatusRunning is the only container status rendered as healthy.
const StatusRunning = "running"

// Badge labels for the container update-availability slot.
const (
	LabelNoInformation       = "No information"
	LabelNewVersionAvailable = "New version available"
	LabelUpToDate            = "Up to date"
)

// Device online indicator labels.
const (
	LabelOnline  = "online"
	LabelOffline = "offline"
)

// FleetTimeLayout is the layout the fleet server stamps on last_updated.
const FleetTimeLayout = "2006/01/02 15:04:05"

// Stream transports.
const (
	TransportWebsocket = "websocket"
	TransportMQTT      = "mqtt"
	TransportReplay    = "replay"
)

const (
	DefaultEventName         = "event_stream"
	DefaultReconcilerWorkers = 8
	DefaultReconnectDelay    = 5 // seconds
	DefaultRenderInterval    = 5 // seconds
	DefaultReplayInterval    = 1 // seconds
	DefaultAPIListenAddress  = ":8090"
)
