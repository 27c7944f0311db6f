// Package main provides the ljpw binary entry point: command-line
// queries over an LJPW coordinate dataset.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ljpw"
	"github.com/hupe1980/ljpw/codec"
	"github.com/hupe1980/ljpw/dataset"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		datasetPath string
		logLevel    string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:           "ljpw",
		Short:         "Query an LJPW semantic coordinate dataset",
		Long:          "ljpw answers proximity queries over a dataset of concepts positioned in the 4-dimensional Love/Justice/Power/Wisdom coordinate space.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&datasetPath, "dataset", "d", "", "Dataset file path (.json or .json.gz)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	_ = cmd.MarkPersistentFlagRequired("dataset")

	open := func() (*ljpw.Space, error) {
		return ljpw.Open(datasetPath, ljpw.WithLogger(ljpw.NewTextLogger(parseLevel(logLevel))))
	}

	cmd.AddCommand(
		nearestCmd(open, &jsonOutput),
		distanceCmd(open),
		clusterCmd(open, &jsonOutput),
		harmonyCmd(open),
		infoCmd(open, &jsonOutput),
	)

	return cmd
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func nearestCmd(open func() (*ljpw.Space, error), jsonOutput *bool) *cobra.Command {
	var (
		k      int
		domain string
	)

	cmd := &cobra.Command{
		Use:   "nearest <word>",
		Short: "Find the concepts nearest to a stored concept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := open()
			if err != nil {
				return err
			}

			results, err := space.Nearest(args[0], k, func(o *ljpw.SearchOptions) {
				if domain != "" {
					o.Domains = []string{domain}
				}
			})
			if err != nil {
				return err
			}

			if *jsonOutput {
				return printJSON(cmd, results)
			}
			for i, r := range results {
				cmd.Printf("%2d. %-24s %.4f  (%s)\n", i+1, r.Concept.Name, r.Distance, r.Concept.Domain)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&k, "k", 5, "Number of neighbors")
	cmd.Flags().StringVar(&domain, "domain", "", "Restrict candidates to a domain")

	return cmd
}

func distanceCmd(open func() (*ljpw.Space, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "distance <wordA> <wordB>",
		Short: "Euclidean distance between two concepts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := open()
			if err != nil {
				return err
			}

			d, err := space.DistanceBetween(args[0], args[1])
			if err != nil {
				return err
			}

			cmd.Printf("%.4f\n", d)
			return nil
		},
	}
}

func clusterCmd(open func() (*ljpw.Space, error), jsonOutput *bool) *cobra.Command {
	var (
		k    int
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Partition the dataset with seeded k-means",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := open()
			if err != nil {
				return err
			}

			clustering, err := space.Cluster(k, func(o *ljpw.ClusterOptions) { o.Seed = seed })
			if err != nil {
				return err
			}

			if *jsonOutput {
				return printJSON(cmd, clustering)
			}

			members := make([][]string, clustering.K)
			for ord, j := range clustering.Assignments {
				members[j] = append(members[j], space.Dataset().At(ord).Name)
			}
			for _, summary := range clustering.Clusters {
				cmd.Printf("cluster %d (%d concepts, exemplar %q, centroid [%.2f %.2f %.2f %.2f])\n",
					summary.Index, summary.Size, summary.Exemplar,
					summary.Centroid[0], summary.Centroid[1], summary.Centroid[2], summary.Centroid[3])
				cmd.Printf("  %s\n", strings.Join(members[summary.Index], ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&k, "k", 4, "Number of clusters")
	cmd.Flags().Int64Var(&seed, "seed", 1, "RNG seed for reproducible runs")

	return cmd
}

func harmonyCmd(open func() (*ljpw.Space, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "harmony <word>",
		Short: "Harmony score of a concept (alignment with the (1,1,1,1) anchor)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := open()
			if err != nil {
				return err
			}

			h, err := space.Harmony(args[0])
			if err != nil {
				return err
			}

			cmd.Printf("%.4f\n", h)
			return nil
		},
	}
}

func infoCmd(open func() (*ljpw.Space, error), jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Dataset metadata and per-domain statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := open()
			if err != nil {
				return err
			}

			ds := space.Dataset()
			stats := ds.Stats()

			if *jsonOutput {
				return printJSON(cmd, struct {
					Metadata dataset.Metadata     `json:"metadata"`
					Stats    []dataset.DomainStat `json:"stats"`
				}{ds.Meta(), stats})
			}

			meta := ds.Meta()
			cmd.Printf("version: %s\nconcepts: %d\ndomains: %d\n\n", meta.Version, meta.TotalConcepts, meta.TotalDomains)
			for _, st := range stats {
				cmd.Printf("%-24s %4d concepts, mean [%.2f %.2f %.2f %.2f]\n",
					ds.DomainName(st.Domain), st.Count, st.Mean[0], st.Mean[1], st.Mean[2], st.Mean[3])
			}
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := codec.Default.Marshal(v)
	if err != nil {
		return err
	}
	cmd.Println(string(b))
	return nil
}
