// Package provider holds the small generic framework used to pick a
// transcription backend at request time.
//
// A Provider only has to report its name and whether it can serve requests
// right now. Instances are added to a Manager, which asks its Selector for
// one on every call:
//
//	mgr := provider.NewManager[transcription.Recognizer](
//	    &provider.PrioritySelector[transcription.Recognizer]{Priority: []string{"tencent", "whisper"}},
//	)
//	mgr.Add(tencentClient)
//	mgr.Add(whisperClient)
//	p, err := mgr.Get(ctx) // first available in priority order
//
// ErrNoneAvailable is returned when no registered provider is usable.
package provider
