package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("10")
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = parseAmount("-3")
	require.NoError(t, err)
	assert.Equal(t, -3, v)

	_, err = parseAmount("ten")
	assert.ErrorContains(t, err, `invalid amount "ten"`)

	// 4294967306 would wrap to 10 on the i32 wire
	_, err = parseAmount("4294967306")
	assert.ErrorContains(t, err, "out of range")

	v, err = parseAmount("-2147483648")
	require.NoError(t, err)
	assert.Equal(t, -2147483648, v)
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "increase", "decrease", "offset", "status", "tune", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	assert.NotNil(t, runCmd.Flags().Lookup("no-tray"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.Error(t, increaseCmd.Args(increaseCmd, nil))
}
