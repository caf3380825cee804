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
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hpitta26/locflow/internal/store"
)

var glossaryDBPath string

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the terminology glossary",
	Long: `Add, list, and delete terminology glossary entries.

Glossary entries pin the translation of specific source terms per target
language. During localization the stored entries for the job's target
language are merged over the configured glossary table, and the pinned
translations are enforced on capability output.`,
}

var glossaryListTarget string

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all glossary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		entries, err := db.ListGlossaryTerms(context.Background(), strings.ToLower(glossaryListTarget))
		if err != nil {
			return fmt.Errorf("failed to list glossary: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTARGET LANG\tSOURCE TERM\tTARGET TERM")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.TargetLang, e.SourceTerm, e.TargetTerm)
		}
		return w.Flush()
	},
}

var glossaryAddTarget string

var glossaryAddCmd = &cobra.Command{
	Use:   "add <source-term> <target-term>",
	Short: "Add or update a glossary entry",
	Long: `Add a glossary entry pinning a source term's translation for one
target language.

Example:
  locflow glossary add "hand history" "histórico de mãos" --target portuguese`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if glossaryAddTarget == "" {
			return fmt.Errorf("--target language flag is required")
		}

		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		target := strings.ToLower(glossaryAddTarget)
		if err := db.AddGlossaryTerm(context.Background(), target, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to add glossary entry: %w", err)
		}
		fmt.Printf("Added: [%s] %q → %q\n", target, args[0], args[1])
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary entry by ID",
	Long: `Delete a glossary entry by its ID (shown in "locflow glossary list").

Example:
  locflow glossary delete gl_1234567890123456789`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteGlossaryTerm(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary entry: %w", err)
		}
		fmt.Printf("Deleted glossary entry: %s\n", args[0])
		return nil
	},
}

var brandCmd = &cobra.Command{
	Use:   "brand",
	Short: "Manage brand terms",
	Long: `Add, list, and delete brand terms.

Brand terms must survive localization byte for byte. Review flags any
translation that drops one, and the revision pass restores case-mangled
occurrences automatically.`,
}

var brandListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all brand terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		terms, err := db.BrandTerms(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list brand terms: %w", err)
		}
		if len(terms) == 0 {
			fmt.Println("No brand terms registered.")
			return nil
		}
		for _, t := range terms {
			fmt.Println(t)
		}
		return nil
	},
}

var brandAddCmd = &cobra.Command{
	Use:   "add <term>",
	Short: "Register a brand term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.AddBrandTerm(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to add brand term: %w", err)
		}
		fmt.Printf("Added brand term: %s\n", args[0])
		return nil
	},
}

var brandDeleteCmd = &cobra.Command{
	Use:   "delete <term>",
	Short: "Delete a brand term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(glossaryDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteBrandTerm(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete brand term: %w", err)
		}
		fmt.Printf("Deleted brand term: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)
	rootCmd.AddCommand(brandCmd)

	glossaryCmd.PersistentFlags().StringVar(&glossaryDBPath, "db", "./data/locflow.db", "Database path")
	brandCmd.PersistentFlags().StringVar(&glossaryDBPath, "db", "./data/locflow.db", "Database path")

	glossaryListCmd.Flags().StringVarP(&glossaryListTarget, "target", "t", "", "Filter by target language (e.g. portuguese)")
	glossaryAddCmd.Flags().StringVarP(&glossaryAddTarget, "target", "t", "", "Target language (e.g. portuguese)")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)

	brandCmd.AddCommand(brandListCmd)
	brandCmd.AddCommand(brandAddCmd)
	brandCmd.AddCommand(brandDeleteCmd)
}
