// Package session implements the generation session controller: it turns a
// prompt submission into exactly one image generation call and keeps the
// resulting images in a session-local, most-recent-first history.
//
// State changes go through Reduce, a pure function over immutable State
// snapshots, so the transitions can be tested without any rendering surface.
// Controller adds the side effects: it calls the generator, enforces a single
// in-flight request, and bounds each request with a timeout and a
// cancellation hook.
package session
