// Package main hosts the ytscribe CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the interactive server (serve), the
// one-shot pipeline commands (transcript, punctuate, describe), and the
// model, dependency, and configuration utilities. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
