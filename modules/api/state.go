package api

import (
	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/svc/state"
)

func (a *api) state(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(containerFrom(ctx).Snapshot())
}

func (a *api) openModal(ctx handler.Context, _ struct{}) handler.Response {
	c := containerFrom(ctx)
	c.OpenModal()
	return handler.JSON(c.Snapshot())
}

func (a *api) closeModal(ctx handler.Context, _ struct{}) handler.Response {
	c := containerFrom(ctx)
	c.CloseModal()
	return handler.JSON(c.Snapshot())
}

// refresh re-resolves the tier, typically after returning from checkout.
func (a *api) refresh(ctx handler.Context, _ struct{}) handler.Response {
	c := containerFrom(ctx)
	c.RefreshSubscription()
	return handler.JSON(c.Snapshot())
}

// stream pushes the current snapshot and then every change until the client
// goes away or the container is released.
func (a *api) stream(ctx handler.Context, _ struct{}) handler.Response {
	c := containerFrom(ctx)
	return handler.SSE(func(stream handler.StreamContext) error {
		sub := c.Stream(stream)
		defer sub.Close()

		if err := stream.SendSignals(signals(c.Snapshot())); err != nil {
			return err
		}
		for {
			select {
			case <-stream.Done():
				return nil
			case msg, ok := <-sub.Receive(stream):
				if !ok {
					a.Logger.DebugContext(stream, "state stream ended",
						logger.Component("api"),
					)
					return nil
				}
				if err := stream.SendSignals(signals(msg.Data)); err != nil {
					return err
				}
			}
		}
	})
}

// signals flattens a snapshot into DataStar signal names.
func signals(s state.Snapshot) map[string]any {
	return map[string]any{
		"identity": map[string]any{
			"status": s.Identity.Status.String(),
			"id":     s.Identity.ID,
			"email":  s.Identity.Email,
		},
		"modalOpen":           s.ModalOpen,
		"tier":                s.Tier.String(),
		"subscriptionLoading": s.SubscriptionLoading,
	}
}
