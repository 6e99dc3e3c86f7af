package models

// CommandPayload is the JSON body posted to a command endpoint.
type CommandPayload struct {
	Command       string `json:"command"`                  // Command discriminator, e.g. "stop_container"
	ID            string `json:"id"`                       // ID of the device the command targets
	ContainerName string `json:"container_name,omitempty"` // Container the command acts on, if any
}
