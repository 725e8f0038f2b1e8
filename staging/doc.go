// Package staging uploads audio clips to a place the remote recognizer can
// fetch them from.
//
// The object store is always preferred. The temporary blob service is only
// used when no object store is configured, and its objects are deleted again
// through Release once the job is over.
package staging
