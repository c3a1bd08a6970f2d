package config

import (
	"os"
	"strings"
)

type EnvConfig struct {
	Notion struct {
		APIKey       string
		ParentPageID string
		Version      string
		BaseURL      string
	}
	Storage struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		UseSSL    bool
		Bucket    string
		PublicURL string
	}
	CORS struct {
		AllowDomains string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
	Port string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Notion (record store). Checked at call time rather than here so the
	// /setup flow can report which values are missing.
	config.Notion.APIKey = os.Getenv("NOTION_API_KEY")
	config.Notion.ParentPageID = os.Getenv("NOTION_PARENT_PAGE_ID")
	config.Notion.Version = os.Getenv("NOTION_VERSION")
	if config.Notion.Version == "" {
		config.Notion.Version = "2022-06-28"
	}
	config.Notion.BaseURL = os.Getenv("NOTION_BASE_URL")
	if config.Notion.BaseURL == "" {
		config.Notion.BaseURL = "https://api.notion.com/v1"
	}

	// Object storage (photo blobs)
	config.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")
	config.Storage.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	config.Storage.SecretKey = os.Getenv("STORAGE_SECRET_KEY")
	config.Storage.UseSSL = os.Getenv("STORAGE_USE_SSL") == "true"
	config.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	if config.Storage.Bucket == "" {
		config.Storage.Bucket = "photos"
	}
	config.Storage.PublicURL = strings.TrimSuffix(os.Getenv("STORAGE_PUBLIC_URL"), "/")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-box-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	return &config
}
