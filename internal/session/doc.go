// Package session coordinates the caption → transcript → punctuation →
// title/description flow for one interactive user.
//
// State is an explicit value: every Controller operation receives the current
// State and returns the next one, and the Stage field decides which actions
// are available. Failures are recorded inline in State.Error so the
// interactive surface can render them next to the results that survived.
//
// Store keeps states in memory keyed by a uuid session identifier. Each
// session admits a single in-flight action; a second concurrent action fails
// with ErrBusy instead of racing the first.
package session
