// Package bridge is the transport boundary to the wearable display. The
// session pushes rendered content down through it and receives raw input
// events back up from the device.
package bridge

import "context"

// InputEvent is one raw gesture notification from the device, exactly as
// the device reports it. EventType is nil when the device omits the field,
// which the classifier treats differently from an empty string.
type InputEvent struct {
	EventType       *string `json:"event_type,omitempty"`
	SelectItemIndex *int    `json:"current_select_item_index,omitempty"`
	SelectItemName  string  `json:"current_select_item_name,omitempty"`
}

// EventHandler receives device input events in arrival order.
type EventHandler func(ev InputEvent)

// Bridge pushes display updates to the device and surfaces its input
// events. Implementations must be safe for concurrent use.
type Bridge interface {
	// UpdateText replaces the content of a named text container.
	UpdateText(ctx context.Context, containerID, containerName, content string) error
	// UpdateBoardImage replaces the rendered board image.
	UpdateBoardImage(ctx context.Context, img []byte) error
	// SubscribeEvents registers a handler for device input; the returned
	// function unsubscribes.
	SubscribeEvents(handler EventHandler) func()
	// Shutdown closes the device link and releases resources.
	Shutdown(ctx context.Context) error
}
