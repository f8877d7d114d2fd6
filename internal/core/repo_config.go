package core

// RepoConfig represents the structure of the .reviewkit.yml file that a
// repository may carry to tune how its changes are reviewed.
type RepoConfig struct {
	// Named aspects the reviewer should focus on, passed through to every
	// reviewer invocation. Example: ["security", "error handling"]
	FocusAreas []string `yaml:"focus_areas"`

	// Maximum diff lines per chunk when a review has to be split.
	// Zero means use the engine default.
	MaxChunkLines int `yaml:"max_chunk_lines"`

	// Additional instructions appended to the reviewer prompt.
	CustomInstructions []string `yaml:"custom_instructions"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		FocusAreas:         []string{},
		CustomInstructions: []string{},
	}
}
