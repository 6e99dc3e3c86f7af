package constants

// Command discriminators sent in the "command" field of a command payload.
const (
	CommandUpdateContainer = "update_container"
	CommandStartContainer  = "start_container"
	CommandStopContainer   = "stop_container"
	CommandRemoveDevice    = "remove_device"
)

// Logical command channels on the control-plane server.
const (
	// EndpointContainerCommand carries container lifecycle commands.
	EndpointContainerCommand = "container-command"
	// EndpointDeviceCommand carries device lifecycle commands.
	EndpointDeviceCommand = "device-command"
)

const (
	DefaultContainerCommandPath = "/container-command"
	DefaultDeviceCommandPath    = "/device-command"
	DefaultFleetPath            = "/fleet"
	DefaultRequestTimeout       = 10 // seconds
)
