package config

// Target maps a file glob pattern to a prompt template and a wiki category.
type Target struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Template string `yaml:"template"`
	Category string `yaml:"category"`
}

// DiscoveryRule describes how `wiki discover` turns a file extension found
// in the repository into a new Target.
type DiscoveryRule struct {
	Template   string `yaml:"template"`
	Category   string `yaml:"category"`
	TargetName string `yaml:"target_name,omitempty"`
}

// PublishConfig configures the git wiki destination.
type PublishConfig struct {
	// Remote URL of the wiki repository. Empty disables publishing.
	Remote string `yaml:"remote,omitempty"`

	// Branch to commit to. Defaults to the remote HEAD when empty.
	Branch string `yaml:"branch,omitempty"`

	// Commit author identity.
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`

	// Token is injected from WIKI_PUSH_TOKEN, never written to disk.
	Token string `yaml:"-"`
}

// DefaultPublishConfig returns publishing defaults.
func DefaultPublishConfig() PublishConfig {
	return PublishConfig{
		AuthorName:  "defectscope",
		AuthorEmail: "defectscope@localhost",
	}
}
