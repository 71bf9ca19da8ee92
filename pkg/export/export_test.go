package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Roll", "Name", "Overall %"},
		Rows: []map[string]string{
			{"Roll": "2201A0001", "Name": "ALICE A", "Overall %": "90.00"},
			{"Roll": "2201A0002", "Name": "BOB, B", "Overall %": "85.50"},
		},
	}
}

func TestCSVRendersHeadersAndRows(t *testing.T) {
	payload, err := CSV(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Roll,Name,Overall %", lines[0])
	assert.Equal(t, "2201A0001,ALICE A,90.00", lines[1])
	assert.Equal(t, `2201A0002,"BOB, B",85.50`, lines[2], "embedded commas must be quoted")
}

func TestCSVMissingCellsRenderEmpty(t *testing.T) {
	payload, err := CSV(Dataset{
		Headers: []string{"Roll", "Status"},
		Rows:    []map[string]string{{"Roll": "2201A0001"}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2201A0001,", lines[1])
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := CSV(Dataset{})
	assert.Error(t, err)
}

func TestPDFProducesDocument(t *testing.T) {
	payload, err := PDF(sampleDataset(), "CSE-A attendance")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
	assert.NotEmpty(t, payload)
}

func TestPDFRequiresHeaders(t *testing.T) {
	_, err := PDF(Dataset{}, "title")
	assert.Error(t, err)
}
