// Package testutil provides deterministic fakes and fixture builders for
// tests: a scripted engine backend and minimal definition payloads.
package testutil
