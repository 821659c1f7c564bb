// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath       string
	modelPath    string
	ontologyPath string
)

var rootCmd = &cobra.Command{
	Use:   "schemamap",
	Short: "Learn schema-to-ontology field mappings with a graph model",
	Long: `schemamap learns to map relational schema fields onto ontology
properties. Fields become nodes of a graph connected by table
membership, declared foreign keys and name similarity; a small
graph-convolutional model trained on labeled fields then ranks
ontology properties for unseen schemas.

Typical flow:
  schemamap generate --tables 8
  schemamap train
  schemamap evaluate
  schemamap predict --input schema.json
  schemamap serve --addr :8080`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "schemamap.db", "path to the run database")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "model.json", "path to the model snapshot")
	rootCmd.PersistentFlags().StringVar(&ontologyPath, "ontology", "", "path to an ontology JSON file (default: built-in generator vocabulary)")
}
