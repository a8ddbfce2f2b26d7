package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
)

// checkResult reports the effective configuration and the API test call.
type checkResult struct {
	Status     string `json:"status"`
	BaseURL    string `json:"base_url"`
	ConfigFile string `json:"config_file,omitempty"`
	Token      string `json:"access_token"`
	CanRefresh bool   `json:"can_refresh"`
	TokenCache string `json:"token_cache,omitempty"`
	Projects   int    `json:"projects"`
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and test the TickTick API",
		Long: `Validate the configuration and test the TickTick API by listing projects.

The test call goes through the same refresh and retry handling as every other
command, so a successful check also persists a refreshed token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommand(cmd, opts, "check", func(ctx context.Context, rt *runtime) (interface{}, error) {
				projects, err := rt.client.ListProjects(ctx)
				if err != nil {
					return nil, err
				}

				result := checkResult{
					Status:     "ok",
					BaseURL:    rt.cfg.BaseURL,
					ConfigFile: rt.cfg.Source,
					Token:      logging.SanitizeToken(rt.client.Token().AccessToken),
					CanRefresh: rt.client.CanRefresh(),
					Projects:   len(projects),
				}
				if rt.store != nil {
					result.TokenCache = rt.store.Path()
				}
				return result, nil
			})
		},
	}
}
