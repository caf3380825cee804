/*
Copyright © 2025 locflow authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hpitta26/locflow/internal/clarify"
	"github.com/hpitta26/locflow/internal/constraint"
	"github.com/hpitta26/locflow/internal/content"
	"github.com/hpitta26/locflow/internal/pipeline"
	"github.com/hpitta26/locflow/internal/review"
	"github.com/hpitta26/locflow/internal/store"
	"github.com/hpitta26/locflow/internal/translator"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string

	serviceName string
	modelName   string
	ollamaURL   string

	openrouterKey string
	openrouterURL string

	credentials string
	projectID   string

	dbPath  string
	noCache bool

	maxWorkers     int
	callsPerSecond float64
	callTimeout    time.Duration

	verbose bool
)

var localizeCmd = &cobra.Command{
	Use:   "localize",
	Short: "Localize a structured content document",
	Long: `Localize a JSON content document into a target language.

The input is either a sections job:

  {"sections": [{"section_id": "...", "title": "...",
                 "content": [{"type": "header", "value": "..."}]}],
   "target_language": "Portuguese"}

or a nested document whose leaves are {"type": ..., "value": ...} objects.
The output file always mirrors the input shape; content that could not be
translated keeps its source value.

Available services:
  - ollama      Ollama LLM (self-hosted)
  - openrouter  OpenRouter LLM (requires API key)
  - google      Google Cloud Translate (requires credentials)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		raw, err := os.ReadFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		ctx := context.Background()

		// A top-level "sections" array selects the shallow job shape; any
		// other object is treated as a nested document.
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("input is not a JSON object: %w", err)
		}

		var job *content.Job
		var doc content.Document
		if _, ok := probe["sections"]; ok {
			var j content.Job
			if err := json.Unmarshal(raw, &j); err != nil {
				return fmt.Errorf("failed to parse sections job: %w", err)
			}
			if targetLang == "" {
				targetLang = j.TargetLanguage
			}
			j.TargetLanguage = targetLang
			if err := j.Validate(); err != nil {
				return fmt.Errorf("invalid job: %w", err)
			}
			job = &j
			doc = j.Document()
		} else {
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("failed to parse document: %w", err)
			}
		}
		if targetLang == "" {
			return fmt.Errorf("target language is required (flag --target or job target_language)")
		}

		st, err := loadSettings()
		if err != nil {
			return err
		}

		// Stored terms merge before the reviewer is built, so review and
		// restoration see the same brand list the prompts carry.
		var db *store.Store
		if !noCache && dbPath != "" {
			db, err = store.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			if err := applyStoredTerms(ctx, db, &st.Constraints, targetLang); err != nil {
				return err
			}
		}

		cfg := pipeline.Config{
			ServiceConfig: translator.Config{
				Credentials: credentials,
				ProjectID:   projectID,
				APIKey:      openrouterKey,
				Model:       modelName,
				BaseURL:     ollamaURL,
			},
			Constraints:    st.Constraints,
			Resolver:       clarify.NewResolver(st.ClarifyRules),
			Reviewer:       review.New(st.Constraints.Brand, review.NewLanguageCheck()),
			TargetLanguage: targetLang,
			SourceLanguage: sourceLang,
			AmbiguousTerms: st.AmbiguousTerms,
			MaxWorkers:     maxWorkers,
			CallsPerSecond: callsPerSecond,
			CallTimeout:    callTimeout,

			SmallBatchThreshold:  st.SmallBatchThreshold,
			SmallBatchIterations: st.SmallBatchIterations,
			LargeBatchIterations: st.LargeBatchIterations,
		}
		if db != nil {
			cfg.Memory = db
			cfg.Persister = db
		}

		cfg.Service, err = buildService(serviceName)
		if err != nil {
			return err
		}

		if verbose {
			cfg.Observer = consoleObserver{}
		}

		ctrl, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		if err := cfg.Service.IsAvailable(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Service check failed (%s): %v\n", cfg.Service.Name(), err)
		}

		start := time.Now()
		result, err := ctrl.Run(ctx, doc)
		if err != nil {
			return fmt.Errorf("localization failed: %w", err)
		}

		var out any = result.Document
		if job != nil {
			out = job.Restore(result.Document)
		}
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}

		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(outputFile, append(encoded, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Localized to %s in %s\n", targetLang, time.Since(start).Round(time.Millisecond))
		fmt.Printf("Batches approved: %d/%d\n", result.Approved(), len(result.Batches))
		if n := len(result.Questions); n > 0 {
			fmt.Printf("Clarifying questions resolved: %d\n", n)
		}
		if n := len(result.MissedPaths); n > 0 {
			fmt.Printf("Paths kept in source language: %d\n", n)
		}
		return nil
	},
}

// applyStoredTerms layers the database's glossary and brand tables over the
// configured constraint set. Stored glossary terms extend (and override) the
// configured table for the target language; stored brand terms extend the
// configured list.
func applyStoredTerms(ctx context.Context, db *store.Store, set *constraint.Set, targetLang string) error {
	lang := strings.ToLower(targetLang)

	terms, err := db.GetGlossaryTerms(ctx, lang)
	if err != nil {
		return fmt.Errorf("failed to load glossary: %w", err)
	}
	if len(terms) > 0 && set.Glossary == nil {
		set.Glossary = constraint.Glossary{}
	}
	for src, tgt := range terms {
		key := strings.ToLower(src)
		if set.Glossary[key] == nil {
			set.Glossary[key] = map[string]string{}
		}
		set.Glossary[key][lang] = tgt
	}

	brand, err := db.BrandTerms(ctx)
	if err != nil {
		return fmt.Errorf("failed to load brand terms: %w", err)
	}
	known := map[string]bool{}
	for _, term := range set.Brand {
		known[term] = true
	}
	for _, term := range brand {
		if !known[term] {
			set.Brand = append(set.Brand, term)
		}
	}
	return nil
}

// buildService constructs the translation capability from CLI parameters.
func buildService(name string) (translator.Service, error) {
	switch name {
	case "ollama":
		return translator.NewOllamaService(ollamaURL, modelName), nil
	case "openrouter":
		return translator.NewOpenRouterService(openrouterKey, openrouterURL, modelName), nil
	case "google":
		return translator.NewGoogleService(), nil
	default:
		return nil, fmt.Errorf("unknown service: %s", name)
	}
}

// consoleObserver logs batch state transitions and warnings to stderr.
type consoleObserver struct{}

func (consoleObserver) BatchTransition(t pipeline.Transition) {
	if t.Detail != "" {
		fmt.Fprintf(os.Stderr, "[%s] iter %d: %s -> %s (%s)\n", t.BatchID, t.Iteration, t.From, t.To, t.Detail)
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] iter %d: %s -> %s\n", t.BatchID, t.Iteration, t.From, t.To)
}

func (consoleObserver) Warning(jobID, detail string) {
	fmt.Fprintf(os.Stderr, "[job %s] warning: %s\n", jobID, detail)
}

func init() {
	rootCmd.AddCommand(localizeCmd)

	localizeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input JSON file (required)")
	localizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output JSON file (required)")
	localizeCmd.Flags().StringVarP(&sourceLang, "source", "s", "English", "Source language name")
	localizeCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language name (e.g. Portuguese)")

	localizeCmd.Flags().StringVar(&serviceName, "service", "ollama", "Translation service: ollama, openrouter, google")
	localizeCmd.Flags().StringVar(&modelName, "model", "", "Model name for LLM services")
	localizeCmd.Flags().StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Ollama base URL")
	localizeCmd.Flags().StringVar(&openrouterKey, "openrouter-key", "", "OpenRouter API key")
	localizeCmd.Flags().StringVar(&openrouterURL, "openrouter-url", "", "OpenRouter base URL override")
	localizeCmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to Google Cloud credentials")
	localizeCmd.Flags().StringVarP(&projectID, "project", "p", "", "Google Cloud Project ID")

	localizeCmd.Flags().StringVar(&dbPath, "db", "./data/locflow.db", "Database path for translation memory")
	localizeCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable translation memory and job archive")

	localizeCmd.Flags().IntVar(&maxWorkers, "workers", 3, "Maximum batches translated concurrently")
	localizeCmd.Flags().Float64Var(&callsPerSecond, "rate", 0, "Capability calls per second across all workers (0 = unlimited)")
	localizeCmd.Flags().DurationVar(&callTimeout, "call-timeout", 60*time.Second, "Timeout per capability call")

	localizeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log batch state transitions to stderr")

	localizeCmd.MarkFlagRequired("input")
	localizeCmd.MarkFlagRequired("output")
}
