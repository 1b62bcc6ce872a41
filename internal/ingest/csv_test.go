package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRowsMapsColumnsByHeader(t *testing.T) {
	// Column order differs from the canonical layout on purpose.
	csv := "species,sample_id,start_point,end_point,read_count,collection_date,start_name,end_name\n" +
		"Puccinia striiformis,25_01,\"-31.95086, 115.86223\",\"-31.39306, 116.09878\",1234,30/07/2025,Perth,Bindoon\n"

	rows, err := parseRows([]byte(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "25_01", r.SampleID)
	assert.Equal(t, "Puccinia striiformis", r.Species)
	assert.Equal(t, "-31.95086, 115.86223", r.StartPoint)
	assert.Equal(t, "-31.39306, 116.09878", r.EndPoint)
	assert.Equal(t, "1234", r.ReadCount)
	assert.Equal(t, "30/07/2025", r.CollectionDate)
	assert.Equal(t, "Perth", r.StartName)
	assert.Equal(t, "Bindoon", r.EndName)
}

func TestParseRowsDiscardsIncompleteRows(t *testing.T) {
	csv := "sample_id,start_name,start_point,end_name,end_point,species,read_count,collection_date\n" +
		"25_01,Perth,\"-31.9, 115.8\",Bindoon,\"-31.3, 116.0\",Puccinia striiformis,10,30/07/2025\n" +
		",,,,,,,\n" + // blank trailing line
		"25_02,York,\"-31.8, 116.7\",Northam,\"-31.6, 116.6\",,5,30/07/2025\n" + // missing species
		",York,\"-31.8, 116.7\",Northam,\"-31.6, 116.6\",Puccinia triticina,5,30/07/2025\n" // missing sample_id

	rows, err := parseRows([]byte(csv))
	require.NoError(t, err)
	assert.Len(t, rows, 1, "incomplete rows are dropped silently")
	assert.Equal(t, "25_01", rows[0].SampleID)
}

func TestParseRowsSkipsMalformedLines(t *testing.T) {
	// Row two carries a bare quote mid-field; the rows around it must both
	// survive.
	csv := "sample_id,start_name,start_point,end_name,end_point,species,read_count,collection_date\n" +
		"A_01,Perth,\"-31.9, 115.8\",Bindoon,\"-31.3, 116.0\",Puccinia striiformis,10,30/07/2025\n" +
		"B_02,Yo\"rk,\"-31.8, 116.7\",Northam,\"-31.6, 116.6\",Puccinia triticina,5,30/07/2025\n" +
		"C_03,Moora,\"-30.6, 116.0\",Dalwallinu,\"-30.2, 116.6\",Puccinia striiformis,7,30/07/2025\n"

	rows, err := parseRows([]byte(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A_01", rows[0].SampleID)
	assert.Equal(t, "C_03", rows[1].SampleID)
}

func TestGroupBySamplePreservesFirstSeenOrder(t *testing.T) {
	rows := []rawRow{
		{SampleID: "b", Species: "x"},
		{SampleID: "a", Species: "x"},
		{SampleID: "b", Species: "y"},
		{SampleID: "c", Species: "x"},
	}
	groups := groupBySample(rows)
	require.Len(t, groups, 3)
	assert.Equal(t, "b", groups[0].SampleID)
	assert.Equal(t, "a", groups[1].SampleID)
	assert.Equal(t, "c", groups[2].SampleID)
	assert.Len(t, groups[0].Rows, 2)
}

func TestParsePoint(t *testing.T) {
	lat, lon, err := parsePoint("-31.95086, 115.86223")
	require.NoError(t, err)
	assert.Equal(t, -31.95086, lat)
	assert.Equal(t, 115.86223, lon)

	// No space after the comma is fine too.
	lat, lon, err = parsePoint("-31.39306,116.09878")
	require.NoError(t, err)
	assert.Equal(t, -31.39306, lat)
	assert.Equal(t, 116.09878, lon)

	for _, bad := range []string{"", "Perth", "-31.9", "-31.9, abc", "1, 2, 3", "NaN, 115.8"} {
		_, _, err := parsePoint(bad)
		assert.Error(t, err, "should reject %q", bad)
	}
}

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate("30/07/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-30", got)

	got, err = NormalizeDate("2025-07-30")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-30", got)

	for _, bad := range []string{"", "07/30/2025", "30-07-2025", "yesterday"} {
		_, err := NormalizeDate(bad)
		assert.Error(t, err, "should reject %q", bad)
	}
}
