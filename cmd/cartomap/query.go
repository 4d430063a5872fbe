package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func queryCmd() *cobra.Command {
	var connection string
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run SQL against a CARTO connection or local warehouse and print JSON rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			params, err := parseParamPairs(paramPairs)
			if err != nil {
				return err
			}
			return runQuery(cmd, connection, query, params)
		},
	}
	cmd.Flags().StringVar(&connection, "connection", "", "CARTO connection name or postgres:// / sqlite:// DSN (default: first layer's)")
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Query parameter as key=value (repeatable)")
	return cmd
}

func runQuery(cmd *cobra.Command, connection, query string, params map[string]any) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	rows, err := svc.Query(cmd.Context(), connection, query, params)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}

func parseParamPairs(pairs []string) (map[string]any, error) {
	params := make(map[string]any)
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid param %q: expected key=value", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid param %q: empty key", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}
