// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortesi/musq"
)

func TestIsQueryRecognisesReadOnlyStatements(t *testing.T) {
	assert.True(t, isQuery("select 1"))
	assert.True(t, isQuery("  SELECT 1"))
	assert.True(t, isQuery("PRAGMA foreign_keys"))
	assert.True(t, isQuery("with x as (select 1) select * from x"))
	assert.False(t, isQuery("INSERT INTO t(v) VALUES (1)"))
	assert.False(t, isQuery("CREATE TABLE t(v INTEGER)"))
}

func TestPrintRowsFormatsColumnsAsNameValuePairs(t *testing.T) {
	conn, err := musq.InMemory().Open(context.Background())
	require.NoError(t, err)
	defer conn.Close(context.Background())

	_, _, err = conn.Execute(context.Background(), "CREATE TABLE t(a INTEGER, b TEXT)", nil)
	require.NoError(t, err)

	args := musq.NewArguments()
	args.Add(musq.Int(1))
	args.Add(musq.Str("x"))
	_, _, err = conn.Execute(context.Background(), "INSERT INTO t(a, b) VALUES (?1, ?2)", args)
	require.NoError(t, err)

	rows, err := conn.FetchAll(context.Background(), "SELECT a, b FROM t", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	printRows(cmd, rows)

	assert.Equal(t, "a=1 b=x\n", buf.String())
}
