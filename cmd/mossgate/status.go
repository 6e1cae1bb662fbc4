// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mossgate/mossgate/internal/config"
)

// ServerStatus holds the probed state of a running server.
type ServerStatus struct {
	Addr          string `json:"addr"`
	Live          bool   `json:"live"`
	Ready         bool   `json:"ready"`
	PlayersOnline int    `json:"players_online"`
	Error         string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	addr       string
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running Mossgate server",
		Long:  `Probes the server's health endpoints and reports liveness, readiness, and the online player count.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.addr, "addr", "", "metrics/health address to probe (default: server.metrics_addr from config)")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	addr := cfg.addr
	if addr == "" {
		appCfg, err := config.Load(configFile, nil)
		if err != nil {
			return err
		}
		addr = appCfg.Server.MetricsAddr
	}

	status := probeServer(addr)

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	if status.Error != "" {
		return fmt.Errorf("server at %s is not responding", addr)
	}
	return nil
}

// probeServer queries the health and metrics endpoints.
func probeServer(addr string) ServerStatus {
	status := ServerStatus{Addr: addr}
	client := &http.Client{Timeout: 2 * time.Second}
	base := "http://" + addr

	resp, err := client.Get(base + "/healthz/liveness")
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	_ = resp.Body.Close()
	status.Live = resp.StatusCode == http.StatusOK

	resp, err = client.Get(base + "/healthz/readiness")
	if err == nil {
		_ = resp.Body.Close()
		status.Ready = resp.StatusCode == http.StatusOK
	}

	resp, err = client.Get(base + "/metrics")
	if err == nil {
		defer func() { _ = resp.Body.Close() }()
		status.PlayersOnline = scrapePlayersOnline(resp.Body)
	}

	return status
}

// scrapePlayersOnline pulls the online player gauge out of the metrics
// exposition text.
func scrapePlayersOnline(body io.Reader) int {
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "mossgate_players_online") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		var n float64
		if _, err := fmt.Sscanf(fields[len(fields)-1], "%g", &n); err == nil {
			return int(n)
		}
	}
	return 0
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ServerStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ADDR\tLIVE\tREADY\tPLAYERS")
	_, _ = fmt.Fprintln(w, "----\t----\t-----\t-------")
	if status.Error != "" {
		_, _ = fmt.Fprintf(w, "%s\tdown\t-\t%s\n", status.Addr, status.Error)
	} else {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			status.Addr, yesNo(status.Live), yesNo(status.Ready), status.PlayersOnline)
	}

	_ = w.Flush()
	return string(buf)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
