package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/simplejira/internal/api"
	"github.com/joescharf/simplejira/internal/auth"
	"github.com/joescharf/simplejira/internal/daemon"
	"github.com/joescharf/simplejira/internal/output"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Run the REST API server in the foreground on server.addr (default :8080).

Use 'sj serve start' to run it in the background, and 'sj serve stop' or
'sj serve status' to manage that background server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
		defer stop()
		return serveRun(ctx, viper.GetString("server.addr"))
	},
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStartRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background API server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.PersistentFlags().String("addr", "", "Listen address (default from server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.PersistentFlags().Lookup("addr"))

	serveCmd.AddCommand(serveStartCmd)
	serveCmd.AddCommand(serveStopCmd)
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(viper.GetString("state_dir"), "sj-serve.pid"))
}

func serveLogPath() string {
	return filepath.Join(viper.GetString("state_dir"), "sj-serve.log")
}

// authSecret returns auth.secret, or the secret stored in state_dir,
// creating it on first use.
func authSecret() (string, error) {
	if s := strings.TrimSpace(viper.GetString("auth.secret")); s != "" {
		return s, nil
	}

	path := filepath.Join(viper.GetString("state_dir"), "auth.secret")
	data, err := os.ReadFile(path)
	if err == nil && strings.TrimSpace(string(data)) != "" {
		return strings.TrimSpace(string(data)), nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read auth secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate auth secret: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write auth secret: %w", err)
	}
	return secret, nil
}

// newIssuer builds the token issuer from the auth.* keys.
func newIssuer() (*auth.Issuer, error) {
	secret, err := authSecret()
	if err != nil {
		return nil, err
	}
	return auth.NewIssuer(auth.Config{
		Secret:   secret,
		Issuer:   viper.GetString("auth.issuer"),
		Audience: viper.GetString("auth.audience"),
		TTL:      viper.GetDuration("auth.ttl"),
	})
}

// newAPIHandler wires the local service into the REST router.
func newAPIHandler(logger *slog.Logger) (http.Handler, error) {
	svc, err := getService()
	if err != nil {
		return nil, err
	}
	issuer, err := newIssuer()
	if err != nil {
		return nil, err
	}
	srv := api.NewServer(svc, api.Options{
		Issuer:      issuer,
		RequireAuth: viper.GetBool("auth.enabled"),
		Logger:      logger,
	})
	return srv.Router(), nil
}

func serveRun(ctx context.Context, addr string) error {
	logger := slog.Default()
	handler, err := newAPIHandler(logger)
	if err != nil {
		return err
	}
	if !viper.GetBool("auth.enabled") {
		ui.Warning("Authentication disabled: every request runs as %s", auth.DevUser)
	}
	return listenAndServe(ctx, logger, addr, handler, "API")
}

// listenAndServe runs handler on addr until ctx is cancelled, then shuts
// down gracefully.
func listenAndServe(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler, what string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	ui.Success("%s listening on %s", what, output.Cyan("http://"+displayAddr(ln.Addr().String())))
	logger.Info("server started", "component", strings.ToLower(what), "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "component", strings.ToLower(what))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// displayAddr turns a wildcard listen address into a browsable one.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func serveStartRun() error {
	pf := pidFile()
	if st, running := pf.IsRunning(); running {
		return fmt.Errorf("server already running (pid %d on %s)", st.PID, st.Addr)
	}

	addr := viper.GetString("server.addr")
	if dryRun {
		ui.DryRunMsg("Would start API server on %s", addr)
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}
	if err := os.MkdirAll(viper.GetString("state_dir"), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	logFile, err := os.OpenFile(serveLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	child := exec.Command(exe, "serve", "--addr", addr)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)
	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	if err := pf.WriteState(daemon.State{PID: child.Process.Pid, Addr: addr, Started: time.Now().UTC()}); err != nil {
		_ = child.Process.Kill()
		return fmt.Errorf("write PID file: %w", err)
	}
	_ = child.Process.Release()

	ui.Success("API server started (pid %d) on %s", child.Process.Pid, addr)
	ui.Info("Logs: %s", serveLogPath())
	return nil
}

func serveStopRun() error {
	pf := pidFile()
	st, running := pf.IsRunning()
	if !running {
		if st != nil {
			_ = pf.Remove()
		}
		return fmt.Errorf("server not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop API server (pid %d)", st.PID)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if _, alive := pf.IsRunning(); !alive {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	if _, alive := pf.IsRunning(); alive {
		ui.Warning("Server did not exit, killing pid %d", st.PID)
		_ = pf.Signal(sigKILL())
	}

	_ = pf.Remove()
	ui.Success("API server stopped")
	return nil
}

func serveStatusRun() error {
	st, running := pidFile().IsRunning()
	if !running {
		ui.Info("API server is %s", output.Yellow("not running"))
		return nil
	}
	ui.Info("API server is %s (pid %d) on %s since %s",
		output.Green("running"), st.PID, st.Addr, st.Started.Local().Format(time.RFC3339))
	return nil
}
