package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/simplejira/internal/web"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the browser UI",
	Long: `Run the server-rendered browser UI on web.addr (default :8081).

The UI has no database of its own: every page is built from calls to the
REST API at web.api_url, made with the token of the person logged in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
		defer stop()
		return webRun(ctx, viper.GetString("web.addr"))
	},
}

func init() {
	webCmd.Flags().String("addr", "", "Listen address (default from web.addr)")
	webCmd.Flags().String("api-url", "", "REST API base URL (default from web.api_url)")
	_ = viper.BindPFlag("web.addr", webCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("web.api_url", webCmd.Flags().Lookup("api-url"))
	rootCmd.AddCommand(webCmd)
}

// newWebHandler builds the UI against the API at apiURL.
func newWebHandler(apiURL string, logger *slog.Logger) (http.Handler, error) {
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		return nil, fmt.Errorf("web.api_url is required")
	}
	opts := web.Remote(apiURL, &http.Client{Timeout: 30 * time.Second})
	opts.Logger = logger
	opts.SecureCookies = strings.HasPrefix(apiURL, "https://")

	site, err := web.New(opts)
	if err != nil {
		return nil, err
	}
	return site.Handler(), nil
}

func webRun(ctx context.Context, addr string) error {
	logger := slog.Default()
	apiURL := viper.GetString("web.api_url")
	handler, err := newWebHandler(apiURL, logger)
	if err != nil {
		return err
	}
	ui.Info("Using API at %s", apiURL)
	return listenAndServe(ctx, logger, addr, handler, "Web UI")
}
