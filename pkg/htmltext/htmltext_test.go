package htmltext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenKeepsVisibleText(t *testing.T) {
	text, err := FlattenString(`<html><head><title>portal</title>
<script>var x = 1;</script><style>body { color: red }</style></head>
<body><h2>JOHN DOE's Attendance Data (2201A0001)</h2>
<p>Updated on: 12 May 2024</p></body></html>`)
	require.NoError(t, err)

	assert.Contains(t, text, "JOHN DOE's Attendance Data (2201A0001)")
	assert.Contains(t, text, "Updated on: 12 May 2024")
	assert.NotContains(t, text, "var x = 1")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "portal", "head content stays out of the body text")
}

func TestFlattenTableRowsBecomeLines(t *testing.T) {
	text, err := FlattenString(`<body><table>
<tr><td>1</td><td>Maths</td><td>10</td><td>9</td><td>90.0</td></tr>
<tr><td>TOTAL</td><td>10</td><td>9</td><td>90.0</td></tr>
</table></body>`)
	require.NoError(t, err)

	var rows []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			rows = append(rows, trimmed)
		}
	}
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "Maths")
	assert.True(t, strings.HasPrefix(rows[1], "TOTAL"))
}

func TestFlattenBreakTags(t *testing.T) {
	text, err := FlattenString(`<body>first<br>second</body>`)
	require.NoError(t, err)
	assert.Contains(t, text, "first\nsecond")
}

func TestFlattenNoBodyFallsBackToDocument(t *testing.T) {
	text, err := FlattenString(`just a fragment`)
	require.NoError(t, err)
	assert.Contains(t, text, "just a fragment")
}

func TestFlattenEmptyInput(t *testing.T) {
	text, err := FlattenString("")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(text))
}
