package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Action names accepted by the dispatcher.
const (
	ActionReload         = "reload"
	ActionRunScene       = "run_scene"
	ActionIdentify       = "identify"
	ActionRefreshDevices = "refresh_devices"
	ActionResetState     = "reset_state"
)

// Hub is the slice of hub operations the dispatcher drives.
type Hub interface {
	Reload(ctx context.Context) error
	Refresh(ctx context.Context) error
	RunScene(ctx context.Context, id int) error
	Identify(ctx context.Context, id int) error
	ResetState(ctx context.Context) error
}

// Dispatcher routes named actions with loosely typed arguments (as
// decoded from a JSON body) onto hub operations.
type Dispatcher struct {
	hub Hub
}

// New creates a Dispatcher for the given hub.
func New(hub Hub) *Dispatcher {
	return &Dispatcher{hub: hub}
}

// Actions returns the supported action names.
func Actions() []string {
	return []string{ActionReload, ActionRunScene, ActionIdentify, ActionRefreshDevices, ActionResetState}
}

// Dispatch runs one named action.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - action: One of the Action* constants
//   - args: Decoded JSON arguments; run_scene requires scene_id,
//     identify requires device_id, the other actions take none
//
// Returns:
//   - error: ErrUnknownAction, ErrInvalidArgument, or the hub error
func (d *Dispatcher) Dispatch(ctx context.Context, action string, args map[string]any) error {
	switch action {
	case ActionReload:
		return d.hub.Reload(ctx)

	case ActionRefreshDevices:
		return d.hub.Refresh(ctx)

	case ActionResetState:
		return d.hub.ResetState(ctx)

	case ActionRunScene:
		id, err := intArg(args, "scene_id")
		if err != nil {
			return err
		}
		return d.hub.RunScene(ctx, id)

	case ActionIdentify:
		id, err := intArg(args, "device_id")
		if err != nil {
			return err
		}
		return d.hub.Identify(ctx, id)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// intArg extracts a required integer argument. JSON numbers arrive as
// float64; whole values are accepted, as are numeric strings.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrInvalidArgument, key)
	}

	switch val := v.(type) {
	case int:
		return val, nil
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("%w: %q must be an integer", ErrInvalidArgument, key)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%w: %q must be an integer", ErrInvalidArgument, key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %q must be an integer", ErrInvalidArgument, key)
	}
}
