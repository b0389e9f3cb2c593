package types

// PathFilterConfig contains configuration for the discovery path filter.
type PathFilterConfig struct {
	IgnoredPatterns   []string `json:"ignoredPatterns" yaml:"ignored_patterns" toml:"ignored_patterns"`
	AllowedExtensions []string `json:"allowedExtensions" yaml:"allowed_extensions" toml:"allowed_extensions"`
}
