package translator

import (
	"context"
	"time"
)

type Config struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
}

// Request carries one batch invocation. LLM services consume the rendered
// Payload/Instructions pair and answer with Raw text; structured services
// (Google) consume Segments directly and answer with positionally aligned
// Values.
type Request struct {
	Payload      string   `json:"payload"`
	Instructions string   `json:"instructions"`
	Segments     []string `json:"segments"`
	SourceLang   string   `json:"source_lang"`
	TargetLang   string   `json:"target_lang"`
}

type Result struct {
	ServiceName string            `json:"service_name"`
	Raw         string            `json:"raw,omitempty"`
	Values      []string          `json:"values,omitempty"`
	Latency     time.Duration     `json:"latency"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Service is the opaque translation capability. Implementations may fail,
// hang (bounded by ctx), or return malformed output; callers own all
// recovery.
type Service interface {
	Name() string
	Translate(ctx context.Context, cfg Config, req Request) (*Result, error)
	IsAvailable(ctx context.Context) error
}
