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
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hpitta26/locflow/internal/clarify"
	"github.com/hpitta26/locflow/internal/constraint"
)

// pipelineSettings is the config-file view of the localization pipeline.
// Every field has a working default, so an absent config file yields the
// reference deployment's behavior.
type pipelineSettings struct {
	Glossary       map[string]map[string]string `mapstructure:"glossary"`
	BrandTerms     []string                     `mapstructure:"brand_terms"`
	Limits         constraint.Limits            `mapstructure:"limits"`
	AmbiguousTerms []string                     `mapstructure:"ambiguous_terms"`
	ClarifyRules   []clarify.Rule               `mapstructure:"clarify_rules"`

	SmallBatchThreshold  int `mapstructure:"small_batch_threshold"`
	SmallBatchIterations int `mapstructure:"small_batch_iterations"`
	LargeBatchIterations int `mapstructure:"large_batch_iterations"`
}

// settings is the resolved pipeline configuration: built-in defaults with
// the config file's tables layered on top. Zero iteration values mean the
// controller's own defaults apply.
type settings struct {
	Constraints    constraint.Set
	ClarifyRules   []clarify.Rule
	AmbiguousTerms []string

	SmallBatchThreshold  int
	SmallBatchIterations int
	LargeBatchIterations int
}

// loadSettings merges the config file over the built-in defaults. A table
// present in the file replaces the corresponding default table wholesale;
// partially overriding a table would make behavior depend on defaults the
// operator cannot see.
func loadSettings() (settings, error) {
	var fileCfg pipelineSettings
	if err := viper.UnmarshalKey("pipeline", &fileCfg); err != nil {
		return settings{}, fmt.Errorf("invalid pipeline config: %w", err)
	}

	st := settings{
		Constraints:    constraint.Defaults(),
		ClarifyRules:   clarify.DefaultRules(),
		AmbiguousTerms: clarify.DefaultAmbiguousTerms(),

		SmallBatchThreshold:  fileCfg.SmallBatchThreshold,
		SmallBatchIterations: fileCfg.SmallBatchIterations,
		LargeBatchIterations: fileCfg.LargeBatchIterations,
	}

	if len(fileCfg.Glossary) > 0 {
		g := constraint.Glossary{}
		for term, byLang := range fileCfg.Glossary {
			lower := map[string]string{}
			for lang, translation := range byLang {
				lower[strings.ToLower(lang)] = translation
			}
			g[strings.ToLower(term)] = lower
		}
		st.Constraints.Glossary = g
	}
	if len(fileCfg.BrandTerms) > 0 {
		st.Constraints.Brand = constraint.BrandTerms(fileCfg.BrandTerms)
	}
	if fileCfg.Limits.Default > 0 || len(fileCfg.Limits.Factors) > 0 {
		st.Constraints.Limits = fileCfg.Limits
	}
	if len(fileCfg.AmbiguousTerms) > 0 {
		st.AmbiguousTerms = fileCfg.AmbiguousTerms
	}
	if len(fileCfg.ClarifyRules) > 0 {
		st.ClarifyRules = fileCfg.ClarifyRules
	}

	return st, nil
}
