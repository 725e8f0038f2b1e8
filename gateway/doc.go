// Package gateway turns a recorded clip into text.
//
// A Gateway sniffs the clip's container format, picks the first available
// recognizer by priority and either sends the bytes inline or stages them
// and drives a submit/poll job. Temporary staged clips are released in the
// background after the job ends; Wait drains those releases on shutdown.
//
//	gw := gateway.New(cfg, recognizers,
//	    gateway.WithStager(uploader),
//	    gateway.WithCache(redis.NewTypedStore[transcription.Result](client, "asr:transcript")),
//	)
//	res, err := gw.Transcribe(ctx, audio.NewBlob(body, contentType))
//
// Handler exposes the gateway over HTTP as POST /transcribe and POST /api/asr.
package gateway
