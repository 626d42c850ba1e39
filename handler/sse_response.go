package handler

import (
	"net/http"
)

// SSEHandler runs for the lifetime of an SSE connection. The connection is
// closed when it returns or the client disconnects.
//
//	handler.SSE(func(stream handler.StreamContext) error {
//		for snap := range snapshots {
//			if err := stream.SendSignals(snap.Signals()); err != nil {
//				return err
//			}
//		}
//		return nil
//	})
type SSEHandler func(ctx StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

// Render validates the DataStar connection and executes the SSE handler.
func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return NewHTTPError(http.StatusBadRequest, "datastar_required")
	}

	base := NewContext(w, r)
	sse := base.SSE()
	if sse == nil {
		return ErrSSENotInitialized
	}

	return s.handler(&streamContext{Context: base, sse: sse})
}

// SSE creates a streaming response that runs the given handler.
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}
