package version

// Set at build time with
//
//	go build -ldflags "-X 'github.com/charlie0129/powerstate/pkg/version.Version=...'"
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
)

// Short returns a human-friendly version string.
func Short() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
