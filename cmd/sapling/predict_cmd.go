package main

import (
	"bufio"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/checkpoint"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	treeInput      string
	checkpointName string
	delimiter      string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the label of samples read from STDIN",
		Long: `Use a grown tree to predict its label feature for samples read from STDIN,
one delimited line of input feature values per sample, in schema order.`,
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
			err = predict(t, []rune(config.delimiter)[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.treeInput), "tree", "t", "", "path to a file with a grown tree, or a redis:// URL to load it from (required)")
	cmd.PersistentFlags().StringVarP(&(config.checkpointName), "checkpoint-name", "n", "tree", "name the tree was saved under when the tree flag is a redis:// URL")
	cmd.PersistentFlags().StringVarP(&(config.delimiter), "delimiter", "d", ",", "delimiter between feature values on input lines")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if len(pcc.delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", pcc.delimiter)
	}
	return nil
}

func loadTree(ctx context.Context, treeInput, checkpointName string) (*sapling.Tree, error) {
	if strings.HasPrefix(treeInput, "redis://") {
		store, err := redisCheckpointStore(treeInput)
		if err != nil {
			return nil, err
		}
		t, err := checkpoint.LoadTree(ctx, store, checkpointName, nil)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("no tree saved under %q on %s", checkpointName, treeInput)
		}
		return t, nil
	}
	data, err := ioutil.ReadFile(treeInput)
	if err != nil {
		return nil, fmt.Errorf("reading tree file %s: %v", treeInput, err)
	}
	return checkpoint.Unmarshal(data, nil)
}

func predict(t *sapling.Tree, delimiter rune) error {
	regression := t.Schema().IsRegression()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, string(delimiter))
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}
		e, err := sapling.ParseInputs(t.Schema(), fields)
		if err != nil {
			return err
		}
		if regression {
			v, err := t.PredictValue(e)
			if err != nil {
				return err
			}
			fmt.Printf("%g\n", v)
		} else {
			v, err := t.Predict(e)
			if err != nil {
				return err
			}
			fmt.Println(v)
		}
	}
	return scanner.Err()
}
