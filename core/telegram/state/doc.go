// Package state keeps per-principal dialogue sessions behind a small Store
// interface with in-memory and redis backends. It knows nothing about the
// stages a dialogue walks through; callers define their own Stage values.
package state
