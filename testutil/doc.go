// Package testutil provides test infrastructure shared by the gateway's
// packages.
//
// TestComponent extends component.Component with Reset, Snapshot and Restore
// so in-memory backends (storage/testutil, redis/testutil) can be shared
// across table-driven cases:
//
//	store := storagetest.NewComponent()
//	testutil.T(t).Setup(store) // stopped by t.Cleanup
//
// RecordingWaiter replaces the sleep between polls so polling tests run
// instantly and can assert the intervals that would have elapsed.
package testutil
