// Package auth signs users in with a password, a shared guest account or
// Google, and binds the resulting Identity to the browser session.
//
// Every sign-in and sign-out is published on a Channel keyed by session id.
// Per-session state containers subscribe to it and re-resolve the
// subscription tier on each change. UserMessage turns any error returned here
// into a short text suitable for the sign-in form.
package auth
