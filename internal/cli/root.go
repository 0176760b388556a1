// Package cli wires the orca command tree.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/vanthaita/Orca-CLI-sub000/internal/cliclient"

	"github.com/spf13/cobra"
)

type Config struct {
	OutputWriter io.Writer
}

type runtimeState struct {
	serverOverride string
	apiPrefix      string
	noBrowser      bool
	writer         io.Writer
	creds          *cliclient.Credentials
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{OutputWriter: os.Stdout}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{writer: cfg.OutputWriter, creds: cliclient.NewCredentials()}

	root := &cobra.Command{
		Use:           "orca",
		Short:         "Orca command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.serverOverride == "" {
				rt.serverOverride = os.Getenv("ORCA_API_BASE_URL")
			}
			if rt.apiPrefix == "" {
				rt.apiPrefix = os.Getenv("ORCA_API_PREFIX")
			}
			if !rt.noBrowser {
				rt.noBrowser = strings.EqualFold(os.Getenv("ORCA_NO_BROWSER"), "true")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.serverOverride, "server", "", "Orca server URL (env ORCA_API_BASE_URL)")
	root.PersistentFlags().StringVar(&rt.apiPrefix, "api-prefix", "", "API path prefix (default /api/v1)")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

// ResolveServer picks the flag or env value, then the last login, then the default.
func (rt *runtimeState) ResolveServer() string {
	if rt.serverOverride != "" {
		return strings.TrimRight(rt.serverOverride, "/")
	}
	if current := rt.creds.CurrentServer(); current != "" {
		return current
	}
	return cliclient.DefaultServer
}

func (rt *runtimeState) NewClient() (*cliclient.Client, error) {
	opts := []cliclient.Option{cliclient.WithServer(rt.ResolveServer())}
	if rt.apiPrefix != "" {
		opts = append(opts, cliclient.WithAPIPrefix(rt.apiPrefix))
	}
	return cliclient.New(opts...)
}
