package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/summarist/handler"
	"github.com/dmitrymomot/summarist/pkg/logger"
	"github.com/dmitrymomot/summarist/pkg/validator"
	"github.com/dmitrymomot/summarist/svc/subscription"
)

const maxWebhookSize = 1 << 20

type urlResponse struct {
	URL string `json:"url"`
}

func (a *api) plans(ctx handler.Context, _ struct{}) handler.Response {
	if a.Checkout == nil {
		return handler.JSON(subscription.DefaultPlans().List())
	}
	return handler.JSON(a.Checkout.Plans().List())
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

// checkout blocks until the billing side has produced a checkout URL.
func (a *api) checkout(ctx handler.Context, req checkoutRequest) handler.Response {
	if a.Checkout == nil {
		return handler.JSONError(billingError(subscription.ErrProviderNotReady))
	}
	id, ok := signedIn(ctx)
	if !ok {
		containerFrom(ctx).OpenModal()
		return handler.JSONError(handler.ErrUnauthorized)
	}
	if err := validator.Apply(validator.RequiredString("plan", req.Plan)); err != nil {
		return handler.JSONError(validationError(err))
	}
	url, err := a.Checkout.CheckoutURL(ctx, id.ID, req.Plan)
	if err != nil {
		return handler.JSONError(billingError(err))
	}
	return handler.JSON(urlResponse{URL: url})
}

func (a *api) portal(ctx handler.Context, _ struct{}) handler.Response {
	if a.Portal == nil {
		return handler.JSONError(billingError(subscription.ErrProviderNotReady))
	}
	id, ok := signedIn(ctx)
	if !ok {
		return handler.JSONError(handler.ErrUnauthorized)
	}
	url, err := a.Portal.PortalURL(ctx, id.ID)
	if err != nil {
		return handler.JSONError(billingError(err))
	}
	return handler.JSON(urlResponse{URL: url})
}

// webhook applies a billing provider event. Invalid deliveries get 400 so
// the provider does not retry them; storage failures get 500 so it does.
func (a *api) webhook(w http.ResponseWriter, r *http.Request) {
	ctx := handler.NewContext(w, r)
	if a.Webhooks == nil {
		a.errorHandler(ctx, billingError(subscription.ErrProviderNotReady))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookSize+1))
	if err != nil || len(payload) > maxWebhookSize {
		a.errorHandler(ctx, handler.ErrBadRequest)
		return
	}

	err = a.Webhooks.Handle(r.Context(), payload, r.Header.Get(subscription.PaddleSignatureHeader))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, subscription.ErrInvalidWebhook):
		a.Logger.WarnContext(r.Context(), "rejected billing webhook",
			logger.Error(err),
			logger.Component("api"),
		)
		a.errorHandler(ctx, errors.Join(handler.ErrBadRequest, err))
	default:
		a.errorHandler(ctx, billingError(err))
	}
}
