package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/mendtool/mend/internal/change"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the directive wire object",
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := jsonschema.Reflector{DoNotReference: true}
		schema := reflector.Reflect(&change.WireDirective{})
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
