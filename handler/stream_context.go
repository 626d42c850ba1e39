package handler

import (
	"encoding/json"

	"github.com/starfederation/datastar-go/datastar"
)

// StreamContext extends Context with SSE signal patching.
type StreamContext interface {
	Context

	// SendSignal updates a single frontend signal.
	SendSignal(name string, value any) error

	// SendSignals updates several frontend signals in one event.
	//
	//	err := stream.SendSignals(map[string]any{
	//		"tier":                "premium",
	//		"subscriptionLoading": false,
	//	})
	SendSignals(signals map[string]any) error
}

type streamContext struct {
	Context
	sse *datastar.ServerSentEventGenerator
}

func (c *streamContext) SendSignal(name string, value any) error {
	return c.SendSignals(map[string]any{name: value})
}

func (c *streamContext) SendSignals(signals map[string]any) error {
	if c.sse == nil {
		return ErrSSENotInitialized
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.sse.PatchSignals(data)
}
