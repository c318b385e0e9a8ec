package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlmhg/app"
	"xlmhg/domain/core"
	"xlmhg/domain/stats"
	"xlmhg/internal/testkit"
)

func TestParseListArgs(t *testing.T) {
	list, err := parseListArgs([]string{"10110100000000000010"}, 0, "")
	require.NoError(t, err)
	assert.Equal(t, testkit.PaperIndices(), list.Indices)

	list, err = parseListArgs(nil, 20, "0,2, 3,5,18")
	require.NoError(t, err)
	assert.Equal(t, testkit.PaperList(), list)

	_, err = parseListArgs(nil, 0, "")
	assert.ErrorIs(t, err, core.ErrEmptyList)

	_, err = parseListArgs(nil, 20, "0,x")
	assert.ErrorIs(t, err, core.ErrInvalidIndices)
}

func TestTestFlagsOptions(t *testing.T) {
	var flags testFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)

	base := app.TestOptions{Policy: stats.ExactAlways, Algorithm: stats.Algorithm2}
	opts, err := flags.options(cmd, base)
	require.NoError(t, err)
	assert.Nil(t, opts.X)
	assert.Nil(t, opts.L)
	assert.Nil(t, opts.Tol)
	assert.Equal(t, stats.ExactAlways, opts.Policy)

	require.NoError(t, cmd.Flags().Set("x", "4"))
	require.NoError(t, cmd.Flags().Set("pval-thresh", "0.05"))
	require.NoError(t, cmd.Flags().Set("exact-pval", "if_necessary"))
	require.NoError(t, cmd.Flags().Set("algorithm", "alg1"))
	opts, err = flags.options(cmd, base)
	require.NoError(t, err)
	require.NotNil(t, opts.X)
	assert.Equal(t, 4, *opts.X)
	require.NotNil(t, opts.PValueThresh)
	assert.Equal(t, 0.05, *opts.PValueThresh)
	assert.Equal(t, stats.ExactIfNecessary, opts.Policy)
	assert.Equal(t, stats.Algorithm1, opts.Algorithm)

	require.NoError(t, cmd.Flags().Set("algorithm", "alg9"))
	_, err = flags.options(cmd, base)
	assert.Error(t, err)
}

func TestTestFlagsUsage(t *testing.T) {
	var flags testFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)

	l := cmd.Flags().Lookup("l")
	require.NotNil(t, l)
	assert.Equal(t, "L", l.Shorthand)
	assert.Contains(t, l.Usage, "Largest cutoff")
}
