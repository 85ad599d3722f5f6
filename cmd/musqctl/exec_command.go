// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cortesi/musq"
)

func runExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run one SQL statement against the configured database and print any rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			conn, err := openFromConfig(cfg)
			if err != nil {
				return err
			}
			defer conn.Close(cmd.Context())

			sql := args[0]
			if isQuery(sql) {
				rows, err := conn.FetchAll(cmd.Context(), sql, nil)
				if err != nil {
					return err
				}
				printRows(cmd, rows)
				return nil
			}

			affected, lastID, err := conn.Execute(cmd.Context(), sql, nil)
			if err != nil {
				return err
			}
			cmd.Printf("rows_affected=%d last_insert_id=%d\n", affected, lastID)
			return nil
		},
	}
	return cmd
}

func isQuery(sql string) bool {
	trimmed := strings.TrimSpace(strings.ToUpper(sql))
	return strings.HasPrefix(trimmed, "SELECT") || strings.HasPrefix(trimmed, "PRAGMA") || strings.HasPrefix(trimmed, "WITH")
}

func printRows(cmd *cobra.Command, rows []musq.Row) {
	for _, row := range rows {
		cols := row.Columns()
		fields := make([]string, row.Len())
		for i := range fields {
			v, _ := row.Get(i)
			fields[i] = cols[i].Name + "=" + v.String()
		}
		cmd.Println(strings.Join(fields, " "))
	}
}
