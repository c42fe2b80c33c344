package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultAPIBase() string {
	if v := os.Getenv("MACHBOARD_API"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "boardctl",
		Short:         "Utility for managing the machboard inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("api", defaultAPIBase(), "Base URL of the machboard API")
	cmd.AddCommand(newMachinesCommand())
	cmd.AddCommand(newSnapshotCommand())
	return cmd
}

func newMachinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machines",
		Short: "Machine inventory operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newMachinesListCommand())
	cmd.AddCommand(newMachinesCreateCommand())
	cmd.AddCommand(newMachinesUpdateCommand())
	cmd.AddCommand(newMachinesDeleteCommand())
	cmd.AddCommand(newMachinesUndoCommand())
	return cmd
}

type machine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func newMachinesListCommand() *cobra.Command {
	var (
		status string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List machines, optionally filtered by status and name substring",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if status != "" {
				params.Set("status", status)
			}
			if query != "" {
				params.Set("q", query)
			}

			var resp struct {
				Machines []machine `json:"machines"`
			}
			if err := call(cmd, http.MethodGet, "/v1/machines?"+params.Encode(), nil, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tLAST UPDATED")
			for _, m := range resp.Machines {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Status, m.LastUpdated.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (Idle, Running, Offline or ALL)")
	cmd.Flags().StringVar(&query, "q", "", "Filter by case-insensitive name substring")
	return cmd
}

func newMachinesCreateCommand() *cobra.Command {
	var (
		name   string
		status string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Machine machine `json:"machine"`
			}
			body := map[string]string{"name": name, "status": status}
			if err := call(cmd, http.MethodPost, "/v1/machines", body, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", resp.Machine.Name, resp.Machine.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Machine name (at least 2 characters)")
	cmd.Flags().StringVar(&status, "status", "Idle", "Initial status")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newMachinesUpdateCommand() *cobra.Command {
	var (
		name   string
		status string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a machine's name and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Machine machine `json:"machine"`
			}
			body := map[string]string{"name": name, "status": status}
			if err := call(cmd, http.MethodPut, "/v1/machines/"+url.PathEscape(args[0]), body, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", resp.Machine.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Machine name")
	cmd.Flags().StringVar(&status, "status", "", "Status (Idle, Running, Offline)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newMachinesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a machine (undoable until the next delete)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := call(cmd, http.MethodDelete, "/v1/machines/"+url.PathEscape(args[0]), nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}
}

func newMachinesUndoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the most recently deleted machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Machine machine `json:"machine"`
			}
			err := call(cmd, http.MethodPost, "/v1/machines/undo", nil, &resp)
			if err != nil {
				return err
			}
			if resp.Machine.ID == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to undo")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s (%s)\n", resp.Machine.Name, resp.Machine.ID)
			return nil
		},
	}
}

func newSnapshotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Export a collection snapshot to object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Key         string `json:"key"`
				Machines    int    `json:"machines"`
				DownloadURL string `json:"download_url"`
			}
			if err := call(cmd, http.MethodPost, "/v1/snapshots", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d machine(s) to %s\n%s\n", resp.Machines, resp.Key, resp.DownloadURL)
			return nil
		},
	}
}

func call(cmd *cobra.Command, method, path string, body, dest any) error {
	apiBase, err := cmd.Flags().GetString("api")
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	ctx := cmd.Context()
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(apiBase, "/")+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("unexpected response: %s", resp.Status)
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
