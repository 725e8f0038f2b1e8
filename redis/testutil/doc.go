// Package testutil provides an in-memory Redis test component.
//
// The component runs miniredis and implements both component.Component and
// testutil.TestComponent.
//
// # Quick Start
//
//	rc := redistest.NewComponent()
//	testutil.T(t).Setup(rc)
//	store := redis.NewTypedStore[transcription.Result](rc.Client(), "asr")
//
// # State Management
//
//	testutil.T(t).Reset(rc)   // Flushes all keys
package testutil
