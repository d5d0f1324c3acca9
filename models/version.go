package models

// VersionKind distinguishes a platform release artifact from a bare git tag.
type VersionKind string

const (
	KindRelease VersionKind = "release"
	KindTag     VersionKind = "tag"
)

// VersionCandidate is the result of resolving a repository's latest version.
// It is transient: only TagName and fields derived from it are ever persisted.
type VersionCandidate struct {
	Kind       VersionKind `json:"kind"`
	TagName    string      `json:"tag_name"`
	Name       string      `json:"name"`
	Body       string      `json:"body"` // release notes, empty for tag kind
	URL        string      `json:"url"`
	Prerelease bool        `json:"prerelease"` // only meaningful for release kind
}
