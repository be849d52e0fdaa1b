// Package services defines shared utilities consumed by the session controller
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures from the
//     caption fetcher and the model client classify consistently.
//
// Integrations with outside systems live in subpackages (see clarifai).
package services
