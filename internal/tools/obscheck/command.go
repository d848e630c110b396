package obscheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookshelf-labs/bookshelf-api/internal/database"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/common"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/loadgen"
	"github.com/bookshelf-labs/bookshelf-api/internal/tools/ui"
)

type options struct {
	grafanaURL      string
	grafanaUser     string
	grafanaPassword string
	serviceName     string
	metric          string
	promSource      int
	lokiSource      int
	tempoSource     int
	window          time.Duration
	settle          time.Duration
	ci              bool
	baseURL         string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "obscheck", Short: "Verify metrics, traces and logs correlation"}
	cmd.PersistentFlags().StringVar(&opts.grafanaURL, "grafana-url", "http://localhost:3001", "Grafana base URL")
	cmd.PersistentFlags().StringVar(&opts.grafanaUser, "grafana-user", "admin", "Grafana username")
	cmd.PersistentFlags().StringVar(&opts.grafanaPassword, "grafana-password", "admin", "Grafana password")
	cmd.PersistentFlags().StringVar(&opts.serviceName, "service-name", "bookshelf-api", "OTel service name")
	cmd.PersistentFlags().StringVar(&opts.metric, "metric", "catalog_operation_duration_seconds_bucket", "histogram carrying trace exemplars")
	cmd.PersistentFlags().IntVar(&opts.promSource, "prometheus-datasource", 1, "Grafana datasource id for Prometheus")
	cmd.PersistentFlags().IntVar(&opts.lokiSource, "loki-datasource", 2, "Grafana datasource id for Loki")
	cmd.PersistentFlags().IntVar(&opts.tempoSource, "tempo-datasource", 3, "Grafana datasource id for Tempo")
	cmd.PersistentFlags().DurationVar(&opts.window, "window", 20*time.Minute, "query lookback window")
	cmd.PersistentFlags().DurationVar(&opts.settle, "settle", 8*time.Second, "wait for exporters to flush after traffic")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:3000", "API base URL for traffic")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate catalog traffic and validate exemplar->trace->log path",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "obscheck run", func(ctx context.Context) ([]string, error) {
				lgRes, err := loadgen.Run(ctx, loadgen.Config{
					BaseURL:     opts.baseURL,
					Profile:     "mixed",
					Email:       database.SeedUserEmail,
					Password:    database.SeedUserEmail,
					Duration:    6 * time.Second,
					RPS:         20,
					Concurrency: 6,
					Seed:        42,
				})
				if err != nil {
					return nil, err
				}
				details := []string{fmt.Sprintf("traffic generated total=%d failures=%d", lgRes.TotalRequests, lgRes.Failures)}
				select {
				case <-ctx.Done():
					return details, ctx.Err()
				case <-time.After(opts.settle):
				}
				return verify(ctx, *opts, details)
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "obscheck run", details, err)
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

func verify(ctx context.Context, opts options, details []string) ([]string, error) {
	traceID, err := fetchTraceIDFromExemplar(ctx, opts)
	if err != nil {
		return details, err
	}
	details = append(details, "exemplar trace_id="+traceID)

	if err := verifyTempoTrace(ctx, opts, traceID); err != nil {
		return details, err
	}
	details = append(details, "tempo trace lookup: ok")

	if err := verifyLokiTraceLogs(ctx, opts, traceID); err != nil {
		return details, err
	}
	return append(details, "loki trace correlation: ok"), nil
}

func run(opts *options, title string, fn common.Action) ([]string, error) {
	fn = common.Instrument("obscheck", title, fn)
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		return fn(ctx)
	}
	return ui.RunWithTimeout(title, 3*time.Minute, fn)
}

func grafanaGET(ctx context.Context, opts options, path string) ([]byte, error) {
	u, err := url.Parse(opts.grafanaURL)
	if err != nil {
		return nil, err
	}
	rel, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	u.Path = strings.TrimRight(u.Path, "/") + rel.Path
	u.RawQuery = rel.RawQuery
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(opts.grafanaUser, opts.grafanaPassword)
	resp, err := (&http.Client{Timeout: 20 * time.Second}).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("grafana request failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func fetchTraceIDFromExemplar(ctx context.Context, opts options) (string, error) {
	start := time.Now().Add(-opts.window).Unix()
	end := time.Now().Unix()
	path := fmt.Sprintf("/api/datasources/proxy/%d/api/v1/query_exemplars?query=%s&start=%d&end=%d",
		opts.promSource, url.QueryEscape(opts.metric), start, end)
	body, err := grafanaGET(ctx, opts, path)
	if err != nil {
		return "", err
	}
	return traceIDFromExemplars(body)
}

func traceIDFromExemplars(body []byte) (string, error) {
	var payload struct {
		Data []struct {
			Exemplars []struct {
				Labels map[string]string `json:"labels"`
			} `json:"exemplars"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	for _, series := range payload.Data {
		for _, e := range series.Exemplars {
			if tid := e.Labels["trace_id"]; len(tid) == 32 {
				return tid, nil
			}
		}
	}
	return "", fmt.Errorf("no trace_id exemplar found")
}

func verifyTempoTrace(ctx context.Context, opts options, traceID string) error {
	body, err := grafanaGET(ctx, opts, fmt.Sprintf("/api/datasources/proxy/%d/api/traces/%s", opts.tempoSource, traceID))
	if err != nil {
		return err
	}
	var payload struct {
		Batches []json.RawMessage `json:"batches"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}
	if len(payload.Batches) == 0 {
		return fmt.Errorf("tempo trace has no batches")
	}
	return nil
}

func lokiQuery(serviceName, traceID string) string {
	return fmt.Sprintf("{service_name=%q} | trace_id=%q", serviceName, traceID)
}

func verifyLokiTraceLogs(ctx context.Context, opts options, traceID string) error {
	nowNS := time.Now().UnixNano()
	startNS := nowNS - int64(opts.window)
	path := fmt.Sprintf("/api/datasources/proxy/%d/loki/api/v1/query_range?query=%s&start=%d&end=%d&limit=1&direction=backward",
		opts.lokiSource, url.QueryEscape(lokiQuery(opts.serviceName, traceID)), startNS, nowNS)
	body, err := grafanaGET(ctx, opts, path)
	if err != nil {
		return err
	}
	var payload struct {
		Data struct {
			Result []json.RawMessage `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}
	if len(payload.Data.Result) == 0 {
		return fmt.Errorf("no correlated loki logs found for trace_id %s", traceID)
	}
	return nil
}
