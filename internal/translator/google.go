package translator

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService translates batch segments through the Cloud Translation
// API. The API accepts a slice of inputs and answers with one translation
// per input, so positional alignment comes for free. There is no structured-output
// parsing, but also no glossary instructions or length budgets, which makes
// it a fallback capability rather than the primary one.
type GoogleService struct{}

func NewGoogleService() *GoogleService {
	return &GoogleService{}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg Config, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if len(req.Segments) == 0 {
		return result, fmt.Errorf("no segments to translate")
	}

	targetTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return result, fmt.Errorf("invalid target language: %w", err)
	}

	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	var translations []translate.Translation
	if req.SourceLang == "" || req.SourceLang == "auto" {
		translations, err = client.Translate(ctx, req.Segments, targetTag, nil)
	} else {
		sourceTag, _ := language.Parse(req.SourceLang)
		translations, err = client.Translate(ctx, req.Segments, targetTag, &translate.Options{Source: sourceTag})
	}
	if err != nil {
		return result, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return result, fmt.Errorf("no translation returned")
	}

	result.Values = make([]string, len(translations))
	for i, tr := range translations {
		result.Values[i] = tr.Text
	}
	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}
