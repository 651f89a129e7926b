package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/steward/internal/table"
)

func TestParseSorts(t *testing.T) {
	got, err := parseSorts([]string{"name", "employees:desc", " id:ASC"})
	require.NoError(t, err)
	assert.Equal(t, []table.Sort{
		{ColumnID: "name"},
		{ColumnID: "employees", Desc: true},
		{ColumnID: "id"},
	}, got)

	_, err = parseSorts([]string{"name:sideways"})
	assert.ErrorContains(t, err, "asc or desc")
	_, err = parseSorts([]string{":desc"})
	assert.Error(t, err)
}

func TestParseFilters(t *testing.T) {
	got, err := parseFilters([]string{"status=active", " department =Finance=HQ"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "active", "department": "Finance=HQ"}, got)

	none, err := parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseFilters([]string{"status"})
	assert.ErrorContains(t, err, "want col=value")
}

func TestExportCmdArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"export"})
	assert.Error(t, root.Execute())

	root = newRootCmd()
	root.SetArgs([]string{"export", "employees"})
	assert.ErrorContains(t, root.Execute(), "unknown resource")
}
