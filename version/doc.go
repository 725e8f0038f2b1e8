// Package version reports build version information.
//
// Values are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/asrgate/version.Version=1.0.0"
package version
