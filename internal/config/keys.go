package config

import (
	"fmt"
	"time"
)

// KeyInfo describes one effective setting for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

type keySpec struct {
	key     string
	env     string
	secret  bool
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", env: "JOBQUEST_PORT",
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", env: "JOBQUEST_DATA_DIR",
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "openai.api_key", env: "JOBQUEST_OPENAI_API_KEY", secret: true,
		extract: func(cfg Config) any { return cfg.OpenAI.APIKey },
	},
	{
		key: "openai.base_url", env: "JOBQUEST_OPENAI_BASE_URL",
		extract: func(cfg Config) any { return cfg.OpenAI.BaseURL },
	},
	{
		key: "openai.model", env: "JOBQUEST_OPENAI_MODEL",
		extract: func(cfg Config) any { return cfg.OpenAI.Model },
	},
	{
		key: "kb.url", env: "JOBQUEST_KB_URL",
		extract: func(cfg Config) any { return cfg.KnowledgeBase.BaseURL },
	},
	{
		key: "kb.id", env: "JOBQUEST_KB_ID",
		extract: func(cfg Config) any { return cfg.KnowledgeBase.ID },
	},
	{
		key: "kb.retry_delay", env: "JOBQUEST_KB_RETRY_DELAY",
		extract: func(cfg Config) any { return cfg.KnowledgeBase.RetryDelay.Round(time.Millisecond) },
	},
	{
		key: "s3.region", env: "JOBQUEST_S3_REGION",
		extract: func(cfg Config) any { return cfg.S3.Region },
	},
	{
		key: "s3.access_key_id", env: "JOBQUEST_S3_ACCESS_KEY_ID", secret: true,
		extract: func(cfg Config) any { return cfg.S3.AccessKeyID },
	},
	{
		key: "s3.secret_access_key", env: "JOBQUEST_S3_SECRET_ACCESS_KEY", secret: true,
		extract: func(cfg Config) any { return cfg.S3.SecretAccessKey },
	},
	{
		key: "log.level", env: "JOBQUEST_LOG_LEVEL",
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

// ShowAll returns the effective settings. Secret values are masked, never
// printed.
func ShowAll(cfg Config) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		value := fmt.Sprintf("%v", s.extract(cfg))
		if s.secret {
			value = mask(value)
		}
		result = append(result, KeyInfo{Key: s.key, EnvVar: s.env, Value: value})
	}
	return result
}

func mask(v string) string {
	if v == "" {
		return "(unset)"
	}
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "..." + v[len(v)-4:]
}
