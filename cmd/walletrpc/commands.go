package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mowind/walletrpc-go/internal/catalog"
	"github.com/mowind/walletrpc-go/internal/connection"
)

var catalogCategory string

// methodsCmd 列出连接方式及其可用性
var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List supported connection methods and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printMethods(cmd.OutOrStdout(), connection.NewRegistry(environment(cfg)), connection.Method(cfg.Connection.DefaultMethod))
		return nil
	},
}

// catalogCmd 搜索 RPC 方法目录
var catalogCmd = &cobra.Command{
	Use:   "catalog [query]",
	Short: "Search the RPC method catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		return printCatalog(cmd.OutOrStdout(), query, catalogCategory)
	},
}

// versionCmd 打印版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "walletrpc %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "Only list methods in this category")
}

func printMethods(out io.Writer, registry *connection.Registry, defaultMethod connection.Method) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tAVAILABLE\tDEFAULT")
	for _, d := range registry.ListMethods() {
		def := ""
		if d.ID == defaultMethod {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", d.ID, d.Name, d.Available, def)
	}
	_ = w.Flush()
}

func printCatalog(out io.Writer, query, category string) error {
	if category != "" && !knownCategory(category) {
		return fmt.Errorf("unknown category: %s", category)
	}

	source := catalog.All()
	if category != "" {
		source = catalog.ByCategory(catalog.Category(strings.ToLower(category)))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tCATEGORY\tTESTS\tDESCRIPTION")
	for _, m := range catalog.Filter(source, query) {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.Method, m.Category, len(m.Tests), m.Description)
	}
	return w.Flush()
}

func knownCategory(category string) bool {
	for _, c := range catalog.Categories() {
		if strings.EqualFold(string(c.ID), category) {
			return true
		}
	}
	return false
}
