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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "locflow",
	Short: "Website localization pipeline",
	Long: `A localization pipeline that translates structured website content
through an iterative translate / review / clarify loop.

Content is split into per-section batches, translated by an LLM or cloud
capability, checked against brand terms, character limits, and target
language, and re-translated with corrective feedback until approved or
the iteration budget runs out. The output document always has the same
shape as the input.

Supported services: Ollama (LLM), OpenRouter (LLM), Google Cloud Translate

Use "locflow localize --help" for pipeline options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./locflow.yaml, then $HOME/.locflow.yaml)")
}

// initConfig reads the optional config file and LOCFLOW_* environment
// variables. A missing file is fine; a malformed one is not.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".locflow")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LOCFLOW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			return
		}
		fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
}
