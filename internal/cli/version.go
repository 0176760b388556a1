package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vanthaita/Orca-CLI-sub000/internal/version"

	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show orca version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			writer := cmd.OutOrStdout()
			if rt, _ := getRuntime(cmd); rt != nil {
				writer = rt.Writer()
			}

			switch outputFormat {
			case "json":
				encoder := json.NewEncoder(writer)
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			case "":
				_, _ = fmt.Fprintf(writer, "orca %s", info.Version)
				if info.GitCommit != "" {
					_, _ = fmt.Fprintf(writer, " (commit: %s)", info.GitCommit)
				}
				_, _ = fmt.Fprintln(writer)
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: json")
	return cmd
}
