// Package version exposes the build identity, set at link time:
//
//	go build -ldflags "-X github.com/farcloser/xcresults/version.version=1.2.3 -X ...version.commit=abc"
package version

//nolint:gochecknoglobals // overridden through -ldflags
var (
	name    = "xcresults"
	version = "dev"
	commit  = "unknown"
)

func Name() string {
	return name
}

func Version() string {
	return version
}

func Commit() string {
	return commit
}
