package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/checkpoint"
	"github.com/pbanos/sapling/checkpoint/redisstore"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/feature/yaml"
	"github.com/pbanos/sapling/stream"
	"github.com/pbanos/sapling/stream/csv"
	"github.com/pbanos/sapling/stream/mongostream"
	"github.com/pbanos/sapling/stream/sqlstream"
	"github.com/pbanos/sapling/stream/sqlstream/pgadapter"
	"github.com/pbanos/sapling/stream/sqlstream/sqlite3adapter"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
	redis "gopkg.in/redis.v5"
)

type growCmdConfig struct {
	*rootCmdConfig
	metadataInput  string
	configInput    string
	dataInput      string
	label          string
	output         string
	checkpointName string
	timeout        int
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a stream of examples",
		Long:  `Grow a decision tree incrementally from a stream of examples to predict a certain feature.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx, cancel := config.Context()
			defer cancel()
			schema, err := yaml.ReadSchemaFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			if config.label != "" {
				schema, err = schema.WithTarget(config.label)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(3)
				}
			}
			treeConfig, err := config.treeConfig()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			t, err := sapling.New(schema, treeConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			examples, closeStream, err := config.inputStream(ctx, schema)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			config.Logf("Growing tree from %s...", config.dataInputName())
			n, err := stream.Feed(ctx, examples, t)
			if cerr := closeStream(); cerr != nil {
				config.Logf("closing example stream: %v", cerr)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			stats := t.Stats()
			config.Logf("Processed %d examples: %d splits, %d alternate subtrees spawned, %d promoted, prequential error %.4f",
				n, stats.Splits, stats.AltTreesSpawned, stats.Promotions, stats.PrequentialError)
			err = config.writeTree(ctx, t)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with the schema of the stream (required)")
	cmd.PersistentFlags().StringVarP(&(config.configInput), "config", "c", "", "path to a YML file with the learning parameters")
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a CSV file with the example stream, a postgresql:// or mongodb:// URL, or a sqlite3 file path ending in .db (defaults to STDIN in CSV)")
	cmd.PersistentFlags().StringVarP(&(config.label), "label", "l", "", "name of the feature to predict (defaults to the schema's target)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to dump the grown tree to, or a redis:// URL to save it on (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.checkpointName), "checkpoint-name", "n", "tree", "name to save the tree under when the output is a redis:// URL")
	cmd.PersistentFlags().IntVarP(&(config.timeout), "timeout", "t", 0, "seconds to allow the tree to grow for before aborting (0 means no timeout)")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	if gcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func (gcc *growCmdConfig) Context() (context.Context, context.CancelFunc) {
	if gcc.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), time.Duration(gcc.timeout)*time.Second)
}

func (gcc *growCmdConfig) treeConfig() (*sapling.Config, error) {
	if gcc.configInput == "" {
		return sapling.DefaultConfig(), nil
	}
	return sapling.LoadConfig(gcc.configInput)
}

func (gcc *growCmdConfig) dataInputName() string {
	if gcc.dataInput == "" {
		return "STDIN"
	}
	return gcc.dataInput
}

func (gcc *growCmdConfig) inputStream(ctx context.Context, schema *feature.Schema) (stream.Stream, func() error, error) {
	switch {
	case strings.HasPrefix(gcc.dataInput, "postgresql://") || strings.HasPrefix(gcc.dataInput, "postgres://"):
		table, rawurl, err := tableParam(gcc.dataInput, "table")
		if err != nil {
			return nil, nil, err
		}
		adapter, err := pgadapter.New(rawurl)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres example stream: %v", err)
		}
		s, err := sqlstream.New(ctx, adapter, table, schema)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case strings.HasPrefix(gcc.dataInput, "mongodb://"):
		collection, rawurl, err := tableParam(gcc.dataInput, "collection")
		if err != nil {
			return nil, nil, err
		}
		session, err := mgo.Dial(rawurl)
		if err != nil {
			return nil, nil, fmt.Errorf("opening mongo example stream: %v", err)
		}
		s := mongostream.Open(session, collection, schema)
		return s, func() error {
			err := s.Close()
			session.Close()
			return err
		}, nil
	case strings.HasSuffix(gcc.dataInput, ".db"):
		adapter, err := sqlite3adapter.New(gcc.dataInput)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite3 example stream: %v", err)
		}
		s, err := sqlstream.New(ctx, adapter, "examples", schema)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	s, err := csv.NewFromFilePath(gcc.dataInput, schema)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// tableParam extracts the named query parameter from a connection URL
// and returns its value (or "examples" when absent) along with the URL
// stripped of it.
func tableParam(rawurl, param string) (string, string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", "", fmt.Errorf("parsing input URL: %v", err)
	}
	q := u.Query()
	name := q.Get(param)
	if name == "" {
		name = "examples"
	}
	q.Del(param)
	u.RawQuery = q.Encode()
	return name, u.String(), nil
}

func (gcc *growCmdConfig) writeTree(ctx context.Context, t *sapling.Tree) error {
	if strings.HasPrefix(gcc.output, "redis://") {
		store, err := redisCheckpointStore(gcc.output)
		if err != nil {
			return err
		}
		return checkpoint.SaveTree(ctx, store, gcc.checkpointName, t)
	}
	data, err := checkpoint.Marshal(t)
	if err != nil {
		return err
	}
	if gcc.output == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	f, err := os.Create(gcc.output)
	if err != nil {
		return fmt.Errorf("creating output file %s: %v", gcc.output, err)
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

func redisCheckpointStore(rawurl string) (checkpoint.Store, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %v", err)
	}
	rc := redis.NewClient(&redis.Options{Addr: u.Host})
	prefix := strings.Trim(u.Path, "/")
	if prefix == "" {
		prefix = "sapling"
	}
	return redisstore.New(rc, prefix), nil
}
