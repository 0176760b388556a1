package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"github.com/vanthaita/Orca-CLI-sub000/internal/cliclient"
	"github.com/vanthaita/Orca-CLI-sub000/internal/util"

	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	var deviceName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize this machine with your Orca account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			client, err := rt.NewClient()
			if err != nil {
				return err
			}

			hostname, _ := os.Hostname()
			if deviceName == "" {
				deviceName = hostname
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := rt.Writer()
			result, err := cliclient.Login(ctx, client, cliclient.LoginOptions{
				DeviceName:        deviceName,
				DeviceFingerprint: deviceFingerprint(hostname),
			}, func(start *cliclient.StartResponse) {
				_, _ = fmt.Fprintf(w, "User code: %s\n", start.UserCode)
				_, _ = fmt.Fprintf(w, "Open this URL to log in and approve: %s\n", start.VerificationURL)
				if !rt.noBrowser {
					_ = openBrowser(start.VerificationURL)
				}
			})
			if err != nil {
				if cliclient.IsRateLimited(err) {
					return errors.New("too many login attempts from this address, try again later")
				}
				return err
			}

			if err := rt.creds.Save(client.Server(), result.Token); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "Logged in to %s. Token valid for %d days.\n",
				client.Server(), int(result.ExpiresIn.Hours()/24))
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceName, "device-name", "", "Name shown for this machine in your token list (default hostname)")
	cmd.Flags().Bool("no-browser", false, "Print the approval URL without opening a browser (env ORCA_NO_BROWSER)")
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}
		if noBrowser, _ := cmd.Flags().GetBool("no-browser"); noBrowser {
			rt.noBrowser = true
		}
		return nil
	}
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the token stored for the server",
		Long: "Removes the locally stored CLI token. The token stays valid on the server " +
			"until it expires or is revoked from the web dashboard.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			server := rt.ResolveServer()
			if err := rt.creds.Delete(server); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Logged out of %s.\n", server)
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the stored token belongs to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			client, err := rt.NewClient()
			if err != nil {
				return err
			}
			token, err := rt.creds.Load(client.Server())
			if err != nil {
				return err
			}

			me, err := client.Me(cmd.Context(), token)
			if cliclient.IsUnauthorized(err) {
				return errors.New("stored token was rejected (revoked or expired), run `orca login`")
			}
			if err != nil {
				return err
			}

			w := rt.Writer()
			_, _ = fmt.Fprintf(w, "%s", me.Email)
			if me.Name != "" {
				_, _ = fmt.Fprintf(w, " (%s)", me.Name)
			}
			_, _ = fmt.Fprintf(w, "\nServer: %s\n", client.Server())
			return nil
		},
	}
}

// deviceFingerprint is a stable, non-reversible machine identifier.
func deviceFingerprint(hostname string) string {
	return util.SHA256Hex(hostname + "|" + runtime.GOOS + "/" + runtime.GOARCH)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.CommandContext(context.Background(), "cmd", "/C", "start", "", url)
	case "darwin":
		cmd = exec.CommandContext(context.Background(), "open", url)
	default:
		cmd = exec.CommandContext(context.Background(), "xdg-open", url)
	}
	return cmd.Start()
}
