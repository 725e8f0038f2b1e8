package signer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/asrgate/httpclient"
)

// HTTPDateProbe returns a Probe that sends HEAD to url and reads the Date
// response header. Any status is accepted as long as Date is present.
func HTTPDateProbe(client *httpclient.Client, url string) Probe {
	return func(ctx context.Context) (time.Time, error) {
		resp, err := client.Do(ctx, httpclient.Request{Method: http.MethodHead, Path: url})
		if resp == nil {
			return time.Time{}, fmt.Errorf("clock probe: %w", err)
		}
		date := resp.Headers["Date"]
		if date == "" {
			return time.Time{}, fmt.Errorf("clock probe: response has no Date header")
		}
		t, perr := http.ParseTime(date)
		if perr != nil {
			return time.Time{}, fmt.Errorf("clock probe: parse Date %q: %w", date, perr)
		}
		return t, nil
	}
}
