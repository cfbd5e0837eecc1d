package buildinfo

import "fmt"

var (
	Version    = "v0.1.0"
	CommitHash = "unknown"
)

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      "https://github.com/Yishiba/animeko",
		Service:    "Animeko Session Service",
		Version:    Version,
		CommitHash: CommitHash,
	}
}

// UserAgent is sent to external providers and by the Go client.
func UserAgent() string {
	return fmt.Sprintf("animeko/%s (+https://github.com/Yishiba/animeko)", Version)
}
