package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/constants"
	"github.com/benmeehan/fleet-monitor/internal/dispatcher"
	"github.com/benmeehan/fleet-monitor/internal/utils"
	"github.com/benmeehan/fleet-monitor/pkg/fleetapi"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const usage = `Usage: fleetctl [flags] <command> <device-id> [container-name]

Commands:
  start   <device-id> <container-name>   start a container
  stop    <device-id> <container-name>   stop a container
  update  <device-id> <container-name>   update a container to the latest image
  remove  <device-id>                    remove a device from the fleet

Flags:
`

func main() {
	flags := pflag.NewFlagSet("fleetctl", pflag.ExitOnError)
	server := flags.StringP("server", "s", utils.Coalesce(os.Getenv("FLEET_SERVER_URL"), "http://127.0.0.1:5000"), "control-plane server URL")
	containerPath := flags.String("container-path", constants.DefaultContainerCommandPath, "path of the container-command endpoint")
	devicePath := flags.String("device-path", constants.DefaultDeviceCommandPath, "path of the device-command endpoint")
	timeout := flags.Duration("timeout", constants.DefaultRequestTimeout*time.Second, "request timeout")
	verbose := flags.BoolP("verbose", "v", false, "log the dispatched request")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	d := dispatcher.NewDispatcher(fleetapi.NewClient(*server, *timeout), *containerPath, *devicePath, logger)

	result, err := run(context.Background(), d, flags.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flags.Usage()
		os.Exit(2)
	}
	if !result.OK() {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", result.Payload.Command, result.Err)
		os.Exit(1)
	}
	fmt.Printf("%s accepted (status %d)\n", result.Payload.Command, result.Response.StatusCode)
}

func run(ctx context.Context, d *dispatcher.Dispatcher, args []string) (dispatcher.Result, error) {
	if len(args) == 0 {
		return dispatcher.Result{}, errors.New("missing command")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "start", "stop", "update":
		if len(rest) != 2 {
			return dispatcher.Result{}, fmt.Errorf("%s needs <device-id> <container-name>", command)
		}
		switch command {
		case "start":
			return d.StartContainer(ctx, rest[0], rest[1]), nil
		case "stop":
			return d.StopContainer(ctx, rest[0], rest[1]), nil
		default:
			return d.UpdateContainer(ctx, rest[0], rest[1]), nil
		}
	case "remove":
		if len(rest) != 1 {
			return dispatcher.Result{}, errors.New("remove needs <device-id>")
		}
		return d.RemoveDevice(ctx, rest[0]), nil
	default:
		return dispatcher.Result{}, fmt.Errorf("unknown command %q", command)
	}
}
