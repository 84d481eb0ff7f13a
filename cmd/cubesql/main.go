// Copyright 2025 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command cubesql rewrites a SQL query against a cube schema and prints
// the resulting plan, semantic request and wrapper SQL. It exists for
// debugging rewrites, not for serving queries.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cubesql "github.com/dolthub/go-cubesql"
	"github.com/dolthub/go-cubesql/sql"
	"github.com/dolthub/go-cubesql/sql/cube"
	"github.com/dolthub/go-cubesql/sql/plan"
	"github.com/dolthub/go-cubesql/sql/rewrite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CUBESQL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "cubesql [flags] [query]",
		Short: "Rewrite a SQL query into a semantic cube request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				query = string(data)
			}
			return run(cmd.OutOrStdout(), v, strings.TrimSpace(query))
		},
	}

	flags := cmd.Flags()
	flags.String("schema", "", "path to the cube schema YAML")
	flags.String("dialect", "postgres", "wrapper SQL dialect (postgres or mysql)")
	flags.Int("max-rewrite-iterations", 30, "saturation iteration budget")
	flags.Int("max-rewrite-nodes", 10000, "e-graph node budget")
	flags.Duration("rewrite-time-budget", 0, "wall-clock rewrite budget")
	flags.Bool("sql-push-down", true, "enable wrapper SQL push-down")
	flags.Bool("push-down-pull-up-split", true, "enable aggregation split rules")
	flags.Bool("verbose", false, "debug logging")
	_ = v.BindPFlags(flags)

	return cmd
}

func run(out io.Writer, v *viper.Viper, query string) error {
	if query == "" {
		return fmt.Errorf("no query given")
	}
	schemaPath := v.GetString("schema")
	if schemaPath == "" {
		return fmt.Errorf("--schema is required")
	}
	meta, err := cube.LoadYAMLFile(schemaPath)
	if err != nil {
		return err
	}

	logger := logrus.New()
	if v.GetBool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := &cubesql.Config{
		Dialect: v.GetString("dialect"),
		Rewrite: rewrite.Config{
			PushDownPullUpSplit: v.GetBool("push-down-pull-up-split"),
			SQLPushDown:         v.GetBool("sql-push-down"),
			MaxIterations:       v.GetInt("max-rewrite-iterations"),
			MaxNodes:            v.GetInt("max-rewrite-nodes"),
			MaxMatchesPerRule:   500,
			TimeBudget:          v.GetDuration("rewrite-time-budget"),
			SchemaVersion:       meta.SchemaVersion,
		},
	}

	engine, err := cubesql.New(meta, cube.NewRetryingTransport(echoTransport{}), cfg)
	if err != nil {
		return err
	}

	ctx := sql.NewContext(context.Background(), sql.WithQuery(query, query), sql.WithLogger(logrus.NewEntry(logger)))
	rewritten, err := engine.RewriteQuery(ctx, query)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, strings.TrimRight(rewritten.String(), "\n"))
	if scan, ok := rewritten.(*plan.CubeScan); ok {
		fmt.Fprintln(out, scan.Request.MustJSON())
	}
	for _, wrapped := range cubesql.WrappedLeaves(rewritten) {
		fmt.Fprintln(out, wrapped.SQL)
	}
	return nil
}

// echoTransport renders inner sub-select requests as their JSON body; the
// CLI has no backend to ask.
type echoTransport struct{}

func (echoTransport) GenerateInnerSQL(ctx *sql.Context, req *sql.Request) (string, []interface{}, error) {
	return fmt.Sprintf("SELECT * FROM cube_request(%s)", req.MustJSON()), nil, nil
}
