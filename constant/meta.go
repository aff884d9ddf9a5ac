// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Marquee is the canonical application identifier used for filesystem paths and CLI branding.
	Marquee = "marquee"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// Product is reported to the media server as the client product name.
	Product = "Marquee"

	// UserAgent is the default HTTP User-Agent string used for requests to the media server.
	UserAgent = Product + "/" + Version
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
