package core

// RepoConfig holds per-repository review overrides, read from an optional
// .diffsentry.yml at the root of the reviewed repository.
type RepoConfig struct {
	// Ignore lists path globs excluded from the diff before it is sent for
	// review (generated files, vendored code, lockfiles).
	Ignore []string `yaml:"ignore"`

	// Model overrides the configured chat model for this repository.
	Model string `yaml:"model"`
}

// DefaultRepoConfig returns the configuration used when a repository carries
// no .diffsentry.yml.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{}
}
