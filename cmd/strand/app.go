package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xraph/strand/pkg/container"
	"github.com/xraph/strand/pkg/document"
)

const version = "0.1.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newApp builds the root command with its subcommands
func newApp() *cobra.Command {
	var file string

	root := &cobra.Command{
		Use:           "strand",
		Short:         "Inspect declarative service documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&file, "file", "f", "services.yaml", "service document to inspect")

	root.AddCommand(newValidateCmd(&file))
	root.AddCommand(newGraphCmd(&file))
	root.AddCommand(newNamesCmd(&file))
	return root
}

func newValidateCmd(file *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a document for directive conflicts, unknown references, and cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.LoadFile(*file)
			if err != nil {
				color.Red("FAIL  %s", *file)
				return err
			}
			graph := container.Analyze(doc)

			failed := false
			issues := graph.Issues()
			for _, name := range sortedKeys(issues) {
				for _, issue := range issues[name] {
					color.Yellow("  %s: %s", name, issue)
					failed = true
				}
			}
			unknown := graph.Unknown()
			for _, name := range sortedKeys(unknown) {
				for _, target := range unknown[name] {
					color.Yellow("  %s: reference to undeclared service '%s'", name, target)
					failed = true
				}
			}
			if cycle := graph.Cycle(); cycle != nil {
				color.Yellow("  cycle: %s", joinArrow(cycle))
				failed = true
			}

			if failed {
				color.Red("FAIL  %s", *file)
				return fmt.Errorf("document %s is invalid", *file)
			}
			color.Green("PASS  %s (%d services)", *file, len(graph.Names()))
			return nil
		},
	}
}

func newGraphCmd(file *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the reference graph of a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.LoadFile(*file)
			if err != nil {
				return err
			}
			graph := container.Analyze(doc)

			if asJSON {
				edges := make(map[string][]string, len(graph.Names()))
				for _, name := range graph.Names() {
					edges[name] = graph.Edges(name)
				}
				out, err := json.MarshalIndent(edges, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				return nil
			}

			for _, name := range graph.Names() {
				targets := graph.Edges(name)
				if len(targets) == 0 {
					cmd.Println(name)
					continue
				}
				for _, target := range targets {
					cmd.Printf("%s -> %s\n", name, target)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the graph as JSON")
	return cmd
}

func newNamesCmd(file *string) *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List the services a document declares, in document order",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.LoadFile(*file)
			if err != nil {
				return err
			}
			for _, name := range container.Analyze(doc).Names() {
				cmd.Println(name)
			}
			return nil
		},
	}
}

// sortedKeys returns the map keys in lexical order for stable output
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func joinArrow(path []string) string {
	out := ""
	for i, name := range path {
		if i > 0 {
			out += " -> "
		}
		out += name
	}
	return out
}
