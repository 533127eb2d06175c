package buildinfo

// Set at link time:
//
//	-X 'github.com/m3rciful/catalogbot/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/m3rciful/catalogbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/catalogbot/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// UserAgent renders the identifier sent to upstream HTTP services.
func UserAgent(app string) string {
	if app == "" {
		app = "catalogbot"
	}
	return app + "/" + Version + " (" + Commit + ")"
}
