// Package httpclient provides the pooled HTTP client used for every outbound
// call: the speech provider API, the temp blob service and the Whisper
// sidecar.
//
// Failures come back as *Error with a Kind, so callers can map them onto
// the gateway error taxonomy. An optional circuit breaker and retry policy
// come from the resilience package.
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://asr.tencentcloudapi.com",
//	    Timeout: 15 * time.Second,
//	    CircuitBreaker: httpclient.DefaultCircuitBreakerConfig("tencent-asr"),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/",
//	    Body:   payload,
//	})
package httpclient
