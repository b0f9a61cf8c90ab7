package types

import "time"

// HTTPConfig holds shared HTTP settings used by every stage that makes
// network requests. One timeout covers every outbound call.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-impact/0.1").
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// ContactEmail is sent to APIs that ask for one (Unpaywall, OpenAlex
	// and CrossRef polite pools).
	ContactEmail string `mapstructure:"contact_email" yaml:"contact_email"`

	// RequestsPerSecond caps the outbound request rate across all workers.
	// Zero disables the cap.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" yaml:"level"`

	// Format is json or console.
	Format string `mapstructure:"format" yaml:"format"`

	// Output is stdout, stderr, or a file path opened for appending.
	Output string `mapstructure:"output" yaml:"output"`
}

// KeywordConfig holds the topical keyword lists matched against titles.
type KeywordConfig struct {
	PublicHealth     []string `mapstructure:"public_health" yaml:"public_health"`
	CapacityBuilding []string `mapstructure:"capacity_building" yaml:"capacity_building"`
}

// RepositoryPrefix maps a DOI prefix to the repository that issues it.
type RepositoryPrefix struct {
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	Name   string `mapstructure:"name" yaml:"name"`
}

// OpenAccessConfig holds settings for the open-access cascade.
type OpenAccessConfig struct {
	// DirectoryRequireMatch makes the directory stage answer only when the
	// journal search returns at least one hit. When false, any well-formed
	// directory response counts as open.
	DirectoryRequireMatch bool `mapstructure:"directory_require_match" yaml:"directory_require_match"`

	// RepositoryPrefixes is the DOI-prefix allow-list of the repository stage.
	RepositoryPrefixes []RepositoryPrefix `mapstructure:"repository_prefixes" yaml:"repository_prefixes"`

	// PreprintSources are the venue substrings that mark a preprint server.
	PreprintSources []string `mapstructure:"preprint_sources" yaml:"preprint_sources"`
}

// ProfileConfig selects the publication-listing provider.
type ProfileConfig struct {
	// Provider is "openalex" or "file".
	Provider string `mapstructure:"provider" yaml:"provider"`

	// File is the YAML listing read by the file provider.
	File string `mapstructure:"file" yaml:"file"`
}

// ImpactConfig holds settings for the impact enrichment pipeline.
type ImpactConfig struct {
	// OutputDir is the base directory; each author gets a subdirectory.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// PaperDelay is the pause between consecutive papers (default 2s).
	PaperDelay time.Duration `mapstructure:"paper_delay" yaml:"paper_delay"`

	// MaxPublications caps the number of publications fetched per author.
	MaxPublications int `mapstructure:"max_publications" yaml:"max_publications"`

	// SinceYear is the cut-off for the "since" author metrics.
	SinceYear int `mapstructure:"since_year" yaml:"since_year"`

	// Authors lists the researchers to process.
	Authors []AuthorSpec `mapstructure:"authors" yaml:"authors"`

	Keywords   KeywordConfig    `mapstructure:"keywords" yaml:"keywords"`
	OpenAccess OpenAccessConfig `mapstructure:"open_access" yaml:"open_access"`
	Profile    ProfileConfig    `mapstructure:"profile" yaml:"profile"`

	// AltmetricAPIKey is optional; the public endpoint works without it.
	AltmetricAPIKey string `mapstructure:"altmetric_api_key" yaml:"altmetric_api_key,omitempty"`

	// NCBIAPIKey is optional and raises the E-utilities rate limit.
	NCBIAPIKey string `mapstructure:"ncbi_api_key" yaml:"ncbi_api_key,omitempty"`
}

// NIHConfig holds settings for the NIH RePORTER source.
type NIHConfig struct {
	TextSearch string `mapstructure:"text_search" yaml:"text_search"`
	FromYear   int    `mapstructure:"from_year" yaml:"from_year"`
	ToYear     int    `mapstructure:"to_year" yaml:"to_year"`
	Workers    int    `mapstructure:"workers" yaml:"workers"`
	PageSize   int    `mapstructure:"page_size" yaml:"page_size"`
}

// GrantsGovConfig holds settings for the Grants.gov source.
type GrantsGovConfig struct {
	Workers            int    `mapstructure:"workers" yaml:"workers"`
	PageSize           int    `mapstructure:"page_size" yaml:"page_size"`
	FundingCategories  string `mapstructure:"funding_categories" yaml:"funding_categories"`
	FundingInstruments string `mapstructure:"funding_instruments" yaml:"funding_instruments"`
	OppStatuses        string `mapstructure:"opp_statuses" yaml:"opp_statuses"`
}

// IDRCConfig holds settings for the IDRC funding page scraper.
type IDRCConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// FundingConfig holds settings for the funding scraper and aggregator.
type FundingConfig struct {
	OutputDir string          `mapstructure:"output_dir" yaml:"output_dir"`
	NIH       NIHConfig       `mapstructure:"nih" yaml:"nih"`
	GrantsGov GrantsGovConfig `mapstructure:"grants_gov" yaml:"grants_gov"`
	IDRC      IDRCConfig      `mapstructure:"idrc" yaml:"idrc"`
}

// Config groups all settings.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Impact  ImpactConfig  `mapstructure:"impact" yaml:"impact"`
	Funding FundingConfig `mapstructure:"funding" yaml:"funding"`

	// MetricsFile, when set, receives the Prometheus metrics in text format at exit.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}
