// file: cmd/resolve.go
// version: 1.0.0
// guid: d88c3672-df18-4b00-b8a4-983d1fb9354d

package cmd

import (
	"fmt"
	"io"

	"github.com/jdfalk/portal-server/internal/config"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Show which file a request path would be served from",
	Long: `Resolve scores every file under the root against the given request path
and prints the best match, followed by the runners-up when --top is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		return runResolve(cmd.OutOrStdout(), config.AppConfig, args[0], top)
	},
}

func init() {
	resolveCmd.Flags().Int("top", 0, "also list this many ranked candidates")
}

func runResolve(out io.Writer, cfg config.Config, requested string, top int) error {
	cfg.ResolveCacheTTL = 0
	res, err := newResolver(cfg)
	if err != nil {
		return err
	}

	ranked := res.Rank(requested)
	if len(ranked) == 0 {
		fmt.Fprintf(out, "%s: no match under %s\n", requested, res.Root())
		return nil
	}

	best := ranked[0]
	fmt.Fprintf(out, "%s -> %s (score %d)\n", requested, best.Rel, best.Score)
	for i := 1; i < len(ranked) && i <= top; i++ {
		fmt.Fprintf(out, "  %2d. %-40s score %4d  depth %d\n", i, ranked[i].Rel, ranked[i].Score, ranked[i].Depth)
	}
	return nil
}
