package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"modelwatch/internal/daemon"
	"modelwatch/internal/storagepath"
	"modelwatch/pkg/types"
)

func buildCheckCmd(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Resolve the aspired versions once and print them",
		Example: "  modelwatch check --config models.yaml\n  modelwatch check --config models.yaml --format json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			daemon.InstallLogger(daemon.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
			fs, err := daemon.NewFileSystem(cfg.Storage)
			if err != nil {
				return err
			}
			src := cfg.Source
			src.PollIntervalSeconds = -1
			s, err := storagepath.NewSource(src, fs)
			if err != nil {
				return err
			}
			defer s.Close()
			resolved, err := s.Resolve()
			if err != nil {
				return err
			}
			return printResolved(cmd.OutOrStdout(), cfg.Source.Servables, resolved, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	return cmd
}

type resolvedVersion struct {
	Name    string `json:"name"`
	Version int64  `json:"version"`
	Path    string `json:"path"`
}

func printResolved(w io.Writer, servables []types.ServableToMonitor, resolved map[string][]types.ServableData, format string) error {
	var rows []resolvedVersion
	for _, s := range servables {
		versions := resolved[s.Name]
		sort.Slice(versions, func(i, j int) bool { return versions[i].ID.Version < versions[j].ID.Version })
		for _, v := range versions {
			rows = append(rows, resolvedVersion{Name: s.Name, Version: v.ID.Version, Path: v.Path})
		}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []resolvedVersion{}
		}
		return enc.Encode(rows)
	case "table", "":
		data := make([][]string, 0, len(rows))
		for _, r := range rows {
			data = append(data, []string{r.Name, strconv.FormatInt(r.Version, 10), r.Path})
		}
		table := tablewriter.NewWriter(w)
		table.Header("Servable", "Version", "Path")
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
