package config

type ServiceConfig struct {
	Name          string              `yaml:"name"`
	Environment   string              `yaml:"environment"`
	Version       string              `yaml:"version"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	RapidPro      RapidProConfig      `yaml:"rapidpro"`
	Search        SearchConfig        `yaml:"search"`
	Deduplication DeduplicationConfig `yaml:"deduplication"`
	// ExportDir is where verification exchange sheets are written
	ExportDir string `yaml:"export_dir"`
}

// GatewayConfig points at the external disbursement gateway
type GatewayConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// RapidProConfig points at the SMS/IVR flow engine used for
// verification outreach
type RapidProConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// SearchConfig points at the similarity index used for duplicate
// detection
type SearchConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// DeduplicationConfig holds the classification score thresholds. Hits at
// or above DuplicateScore are hard duplicates; hits at or above
// PossibleDuplicateScore need adjudication.
type DeduplicationConfig struct {
	DuplicateScore         float64 `yaml:"duplicate_score"`
	PossibleDuplicateScore float64 `yaml:"possible_duplicate_score"`
}
