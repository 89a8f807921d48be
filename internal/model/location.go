package model

// Location is a café unit shown on the locations page. Locations are static
// reference data loaded from the config file, never persisted or edited at
// runtime.
type Location struct {
	Name        string `yaml:"name"`
	Hours       string `yaml:"hours"`
	MapURL      string `yaml:"map_url"`
	EmbedMapURL string `yaml:"embed_map_url,omitempty"`
	Image       string `yaml:"image,omitempty"`
}
