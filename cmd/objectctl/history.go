package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const (
	defaultServerAddr = "http://localhost:8090"
	timeFormat        = "2006-01-02T15:04:05Z"
)

type historyOptions struct {
	server  string
	types   string
	since   time.Duration
	limit   int
	stats   bool
	timeout time.Duration
}

// apiResponse повторяет конверт ответов REST API
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type changeRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func newHistoryCommand() *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history [project]",
		Short: "История изменений проектов на сервере",
		Long: `Без аргумента показывает типы записанных событий, с именем проекта
показывает его историю; --stats выводит статистику по событиям.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			project := ""
			if len(args) == 1 {
				project = args[0]
			}
			switch {
			case opts.stats:
				return showStats(ctx, cmd.OutOrStdout(), project, opts)
			case project != "":
				return showHistory(ctx, cmd.OutOrStdout(), project, opts)
			default:
				return showTypes(ctx, cmd.OutOrStdout(), opts)
			}
		},
	}
	cmd.Flags().StringVar(&opts.server, "server", defaultServerAddr, "адрес REST API")
	cmd.Flags().StringVar(&opts.types, "types", "", "типы событий через запятую")
	cmd.Flags().DurationVar(&opts.since, "since", 0, "окно от текущего момента (например 1h, 30m)")
	cmd.Flags().IntVar(&opts.limit, "limit", 100, "максимум событий")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "показать статистику")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "таймаут запроса")
	return cmd
}

func (o *historyOptions) query() url.Values {
	q := url.Values{}
	if o.types != "" {
		q.Set("type", strings.ReplaceAll(o.types, " ", ""))
	}
	if o.since > 0 {
		q.Set("since", time.Now().Add(-o.since).UTC().Format(time.RFC3339))
	}
	if o.limit > 0 {
		q.Set("limit", strconv.Itoa(o.limit))
	}
	return q
}

func getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("ответ %s (%d): %w", endpoint, resp.StatusCode, err)
	}
	if !envelope.Success {
		return fmt.Errorf("сервер ответил %d: %s", resp.StatusCode, envelope.Message)
	}
	return json.Unmarshal(envelope.Data, out)
}

func showHistory(ctx context.Context, out io.Writer, project string, opts *historyOptions) error {
	endpoint := fmt.Sprintf("%s/api/projects/%s/history?%s",
		strings.TrimRight(opts.server, "/"), url.PathEscape(project), opts.query().Encode())

	var records []changeRecord
	if err := getJSON(ctx, endpoint, &records); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tDATA")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Timestamp.UTC().Format(timeFormat), r.Type, r.Data)
	}
	return tw.Flush()
}

func showStats(ctx context.Context, out io.Writer, project string, opts *historyOptions) error {
	q := opts.query()
	if project != "" {
		q.Set("project", project)
	}
	endpoint := fmt.Sprintf("%s/api/history/stats?%s", strings.TrimRight(opts.server, "/"), q.Encode())

	var stats struct {
		TotalEvents int64          `json:"total_events"`
		EventTypes  map[string]int `json:"event_types"`
	}
	if err := getJSON(ctx, endpoint, &stats); err != nil {
		return err
	}

	fmt.Fprintf(out, "📊 Всего событий: %d\n", stats.TotalEvents)
	types := make([]string, 0, len(stats.EventTypes))
	for t := range stats.EventTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(out, "   %-28s %d\n", t, stats.EventTypes[t])
	}
	return nil
}

func showTypes(ctx context.Context, out io.Writer, opts *historyOptions) error {
	var types []string
	if err := getJSON(ctx, strings.TrimRight(opts.server, "/")+"/api/history/types", &types); err != nil {
		return err
	}
	for _, t := range types {
		fmt.Fprintln(out, t)
	}
	return nil
}
