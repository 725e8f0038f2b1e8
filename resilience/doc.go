// Package resilience provides the fault-tolerance patterns used around
// provider calls.
//
//   - Retry: bounded retries with a pluggable RetryIf and OnRetry hook, used
//     for the single re-signed retry after a clock resync
//   - Poll: fixed-interval status polling with an attempt ceiling
//   - CircuitBreaker: fails fast while a provider endpoint is unhealthy
//   - Bulkhead: caps concurrent in-flight transcription jobs
//
// Waiting goes through a WaitFunc so tests can record intervals instead of
// sleeping.
package resilience
