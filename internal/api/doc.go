// Package api serves the interactive ytscribe surface over HTTP.
//
// # Routes
//
// The HTML page at "/" keeps its session id in a cookie and posts form
// actions to /reference, /punctuate, and /metadata, redirecting back to the
// page afterwards. The JSON API under /api carries the session id in the path
// and returns SessionView payloads. /healthz reports liveness.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Action failures are not HTTP errors: they are
// recorded in the session state and surface as SessionView.Error with a 200
// response. Only protocol problems map to status codes: unknown sessions are
// 404, unknown models 400, and an action that is not available or collides
// with a running action on the same session is 409.
//
// A single server runs per state directory, enforced with a flock lock file.
package api
