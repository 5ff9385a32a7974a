package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SourcePath              string `yaml:"source_path"`
	GenerateSampleIfMissing bool   `yaml:"generate_sample_if_missing"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`
	FirmName        string `yaml:"firm_name"`
	Timezone        string `yaml:"timezone"`

	ReloadSchedule string `yaml:"reload_schedule"`
	DigestSchedule string `yaml:"digest_schedule"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	LLMModel        string `yaml:"llm_model"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	// Selections for the scheduled report. An absent list means the
	// predicate is not applied; the digest then covers the whole table.
	ReportAreas    []string `yaml:"report_areas"`
	ReportStatuses []string `yaml:"report_statuses"`
	ReportStates   []string `yaml:"report_states"`
	ReportDateFrom string   `yaml:"report_date_from"`
	ReportDateTo   string   `yaml:"report_date_to"`

	Location   *time.Location `yaml:"-"`
	ReportFrom time.Time      `yaml:"-"`
	ReportTo   time.Time      `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.SourcePath, "SOURCE_PATH")
	envOverrideBool(&cfg.GenerateSampleIfMissing, "GENERATE_SAMPLE_IF_MISSING")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.FirmName, "FIRM_NAME")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.ReloadSchedule, "RELOAD_SCHEDULE")
	envOverride(&cfg.DigestSchedule, "DIGEST_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverrideList(&cfg.ReportAreas, "REPORT_AREAS")
	envOverrideList(&cfg.ReportStatuses, "REPORT_STATUSES")
	envOverrideList(&cfg.ReportStates, "REPORT_STATES")
	envOverride(&cfg.ReportDateFrom, "REPORT_DATE_FROM")
	envOverride(&cfg.ReportDateTo, "REPORT_DATE_TO")

	// Defaults
	if cfg.SourcePath == "" {
		cfg.SourcePath = "dados_juridicos.xlsx"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./legalinsights.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.FirmName == "" {
		cfg.FirmName = "LegalInsights"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
		cfg.Timezone = time.Local.String()
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.ExternalHTTPTimeoutSeconds < 1 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 1", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.DigestSchedule != "" {
		if cfg.SlackBotToken == "" || cfg.ReportChannelID == "" {
			log.Fatalf("digest_schedule requires slack_bot_token and report_channel_id")
		}
	}

	cfg.ReportFrom = parseConfigDate(cfg.ReportDateFrom, "report_date_from", cfg.Location)
	cfg.ReportTo = parseConfigDate(cfg.ReportDateTo, "report_date_to", cfg.Location)
	if cfg.ReportFrom.IsZero() != cfg.ReportTo.IsZero() {
		log.Printf("Warning: only one of report_date_from/report_date_to is set, date filter disabled")
	}

	return cfg
}

// ReportFilter builds the filter applied to scheduled reports. The date
// predicate is included only when both endpoints are configured.
func (c Config) ReportFilter() Filter {
	f := Filter{
		Areas:    c.ReportAreas,
		Statuses: c.ReportStatuses,
		States:   c.ReportStates,
	}
	if !c.ReportFrom.IsZero() && !c.ReportTo.IsZero() {
		f.DateRange = []time.Time{c.ReportFrom, c.ReportTo}
	}
	return f
}

func parseConfigDate(s, name string, loc *time.Location) time.Time {
	if strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		log.Fatalf("invalid %s '%s': %v", name, s, err)
	}
	return t
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideList(field *[]string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = nil
		for _, item := range strings.Split(val, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				*field = append(*field, item)
			}
		}
	}
}
