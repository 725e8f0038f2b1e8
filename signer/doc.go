// Package signer implements the TC3-HMAC-SHA256 request signature used by
// Tencent Cloud APIs, and the clock that feeds it timestamps.
//
// Signing is a pure function of the credential, the canonical request
// inputs and a Unix timestamp, so it is covered by golden vectors. The
// credential scope embeds the UTC calendar date of that timestamp:
//
//	s := signer.NewTC3Signer("asr")
//	auth, err := s.Sign(cred, signer.CanonicalInput{
//	    Method:      http.MethodPost,
//	    Host:        "asr.tencentcloudapi.com",
//	    ContentType: "application/json; charset=utf-8",
//	    Payload:     body,
//	}, clock.Now().Unix())
//
// SkewClock corrects the local clock using the Date header of the provider
// when a request is rejected for an expired signature.
package signer
