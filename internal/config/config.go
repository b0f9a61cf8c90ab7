// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config registers defaults on a viper instance and decodes it into
// types.Config. Static credentials loaded from the secrets directory fill
// any values the config file and environment left empty.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-impact/pkg/types"
)

// Secret file names read from the secrets directory.
const (
	SecretContactEmail = "contact-email"
	SecretNCBIKey      = "ncbi-api-key"
	SecretAltmetricKey = "altmetric-api-key"
)

// EnvPrefix is the prefix of environment variable overrides,
// e.g. RESEARCH_IMPACT_HTTP_TIMEOUT.
const EnvPrefix = "RESEARCH_IMPACT"

// PublicHealthKeywords are the default public-health topic terms.
var PublicHealthKeywords = []string{
	"public health", "infectious disease", "epidemiology", "mathematical modeling",
	"covid-19", "cholera", "malaria", "pandemic", "outbreak", "disease mitigation",
	"early warning systems", "community response", "health systems", "health equity",
	"vaccination", "surveillance", "data-driven decision-making", "risk communication",
	"contact tracing", "behavior change", "public engagement", "intervention", "awareness",
}

// CapacityBuildingKeywords are the default capacity-building topic terms.
var CapacityBuildingKeywords = []string{
	"training", "capacity", "leadership", "sustainability", "skills development", "education",
	"data science training", "epidemiological training", "south-south collaboration",
	"research network", "mentorship", "interdisciplinary teams", "technology transfer",
	"local expertise", "workforce development", "collaborative learning",
	"public health training", "ai and data innovation", "institutional strengthening",
	"infrastructure building",
}

// PreprintSources are the default venue substrings of preprint servers.
var PreprintSources = []string{
	"arxiv", "biorxiv", "medrxiv", "ssrn", "osf", "researchsquare", "preprints",
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.user_agent", "research-impact/0.1")
	v.SetDefault("http.contact_email", "")
	v.SetDefault("http.requests_per_second", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "research_impact_log.txt")

	v.SetDefault("impact.output_dir", "output/impact")
	v.SetDefault("impact.paper_delay", "2s")
	v.SetDefault("impact.max_publications", 300)
	v.SetDefault("impact.since_year", 2020)
	v.SetDefault("impact.authors", []map[string]any{})
	v.SetDefault("impact.keywords.public_health", PublicHealthKeywords)
	v.SetDefault("impact.keywords.capacity_building", CapacityBuildingKeywords)
	v.SetDefault("impact.open_access.directory_require_match", true)
	v.SetDefault("impact.open_access.repository_prefixes", []map[string]any{
		{"prefix": "10.5281", "name": "zenodo"},
		{"prefix": "10.31235", "name": "osf"},
		{"prefix": "10.1101", "name": "biorxiv"},
		{"prefix": "10.6084", "name": "figshare"},
	})
	v.SetDefault("impact.open_access.preprint_sources", PreprintSources)
	v.SetDefault("impact.profile.provider", "openalex")
	v.SetDefault("impact.profile.file", "")

	v.SetDefault("funding.output_dir", "output/funding")
	v.SetDefault("funding.nih.text_search", "machine learning")
	v.SetDefault("funding.nih.from_year", 2015)
	v.SetDefault("funding.nih.to_year", 2024)
	v.SetDefault("funding.nih.workers", 5)
	v.SetDefault("funding.nih.page_size", 500)
	v.SetDefault("funding.grants_gov.workers", 8)
	v.SetDefault("funding.grants_gov.page_size", 1000)
	v.SetDefault("funding.grants_gov.funding_categories", "HL|ED|EN|ST")
	v.SetDefault("funding.grants_gov.funding_instruments", "G")
	v.SetDefault("funding.grants_gov.opp_statuses", "posted")
	v.SetDefault("funding.idrc.url", "https://idrc-crdi.ca/en/funding")

	v.SetDefault("metrics_file", "")
}

// BindEnv enables environment overrides on v. Nested keys use underscores,
// so http.timeout is read from RESEARCH_IMPACT_HTTP_TIMEOUT.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config, fills empty credentials from secrets, and
// validates the result.
func Load(v *viper.Viper, secrets map[string]string) (*types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	ApplySecrets(&cfg, secrets)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ApplySecrets copies secret values into cfg where the config left them empty.
func ApplySecrets(cfg *types.Config, secrets map[string]string) {
	if cfg.HTTP.ContactEmail == "" {
		cfg.HTTP.ContactEmail = secrets[SecretContactEmail]
	}
	if cfg.Impact.NCBIAPIKey == "" {
		cfg.Impact.NCBIAPIKey = secrets[SecretNCBIKey]
	}
	if cfg.Impact.AltmetricAPIKey == "" {
		cfg.Impact.AltmetricAPIKey = secrets[SecretAltmetricKey]
	}
}

// Validate rejects settings that would make a run meaningless.
func Validate(cfg *types.Config) error {
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must not be negative")
	}
	if cfg.Impact.PaperDelay < 0 {
		return fmt.Errorf("impact.paper_delay must not be negative")
	}
	if cfg.Impact.MaxPublications <= 0 {
		return fmt.Errorf("impact.max_publications must be positive")
	}
	switch cfg.Impact.Profile.Provider {
	case "openalex":
	case "file":
		if cfg.Impact.Profile.File == "" {
			return fmt.Errorf("impact.profile.file is required for the file provider")
		}
	default:
		return fmt.Errorf("unknown impact.profile.provider %q", cfg.Impact.Profile.Provider)
	}
	for _, p := range cfg.Impact.OpenAccess.RepositoryPrefixes {
		if p.Prefix == "" || p.Name == "" {
			return fmt.Errorf("repository prefix entries need both prefix and name")
		}
	}

	nih := cfg.Funding.NIH
	if nih.FromYear > nih.ToYear {
		return fmt.Errorf("funding.nih.from_year %d is after to_year %d", nih.FromYear, nih.ToYear)
	}
	if nih.Workers <= 0 || cfg.Funding.GrantsGov.Workers <= 0 {
		return fmt.Errorf("funding worker counts must be positive")
	}
	if nih.PageSize <= 0 || cfg.Funding.GrantsGov.PageSize <= 0 {
		return fmt.Errorf("funding page sizes must be positive")
	}
	return nil
}

// ParseAuthor parses a "Name=ID" flag value.
func ParseAuthor(s string) (types.AuthorSpec, error) {
	name, id, ok := strings.Cut(s, "=")
	name, id = strings.TrimSpace(name), strings.TrimSpace(id)
	if !ok || name == "" || id == "" {
		return types.AuthorSpec{}, fmt.Errorf("author %q must have the form Name=ID", s)
	}
	return types.AuthorSpec{Name: name, ID: id}, nil
}
