// Package redis holds the optional transcript cache: a go-redis client, its
// lifecycle component and a typed JSON store.
//
//	store := redis.NewTypedStore[transcription.Result](comp.Client(), "asr:transcript")
//	_ = store.Save(ctx, key, &result, 24*time.Hour)
//	cached, err := store.Load(ctx, key) // nil, nil on a miss
package redis
