// Package testutil provides an in-memory storage backend for tests.
//
// The Component implements component.Component, testutil.TestComponent and
// storage.Storage. It records every Put and Delete and can be told to fail,
// which is what staging and gateway tests need:
//
//	store := storagetest.NewComponent()
//	testutil.T(t).Setup(store)
//	store.FailPuts(errors.New("disk full"))
package testutil
