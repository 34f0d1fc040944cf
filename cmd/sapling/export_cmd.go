package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/export"
	"github.com/spf13/cobra"
)

type exportCmdConfig struct {
	*rootCmdConfig
	treeInput      string
	checkpointName string
	format         string
	output         string
}

func exportCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &exportCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a grown tree for inspection",
		Long:  `Export a grown tree as an XML, JSON or DOT document`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			t, err := loadTree(context.Background(), config.treeInput, config.checkpointName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			w, closeFn, err := config.outputWriter()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			err = config.export(t, w)
			if cerr := closeFn(); err == nil {
				err = cerr
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file with a grown tree, or a redis:// URL to load it from (required)")
	cmd.PersistentFlags().StringVarP(&(config.checkpointName), "checkpoint-name", "n", "tree", "name the tree was saved under when the tree flag is a redis:// URL")
	cmd.PersistentFlags().StringVarP(&(config.format), "format", "f", "dot", "format to export the tree in: dot, xml or json")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to write the export to (defaults to STDOUT)")
	return cmd
}

func (ecc *exportCmdConfig) Validate() error {
	if ecc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	switch ecc.format {
	case "dot", "xml", "json":
	default:
		return fmt.Errorf("unknown export format %q", ecc.format)
	}
	return nil
}

func (ecc *exportCmdConfig) outputWriter() (io.Writer, func() error, error) {
	if ecc.output == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(ecc.output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %v", ecc.output, err)
	}
	return f, f.Close, nil
}

func (ecc *exportCmdConfig) export(t *sapling.Tree, w io.Writer) error {
	switch ecc.format {
	case "xml":
		return export.WriteXML(t, w)
	case "json":
		return export.WriteJSON(t, w)
	}
	return export.WriteDOT(t, w)
}
