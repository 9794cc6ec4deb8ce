package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		masked  string
		wantErr bool
		markers int
	}{
		{name: "single marker", masked: "в*10*да", markers: 1},
		{name: "marker at start", masked: "*661*бираться в гости", markers: 1},
		{name: "two markers", masked: "пр*29*красный и пр*29*милый", markers: 2},
		{name: "multi letter rule id", masked: "ю*661*ый", markers: 1},
		{name: "no markers", masked: "вода", wantErr: true},
		{name: "empty string", masked: "", wantErr: true},
		{name: "unterminated marker", masked: "в*10да", wantErr: true},
		{name: "empty marker", masked: "в**да", wantErr: true},
		{name: "whitespace in marker", masked: "в*1 0*да", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Parse(tt.masked)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tmpl.Markers(), tt.markers)
			assert.Equal(t, tt.masked, tmpl.Raw())
		})
	}
}

func TestParseRuneOffsets(t *testing.T) {
	tmpl, err := Parse("в*10*да")
	require.NoError(t, err)

	m := tmpl.Markers()[0]
	assert.Equal(t, "10", m.RuleID)
	assert.Equal(t, 1, m.Start)
	assert.Equal(t, 5, m.End)
}

func TestRuleIDs(t *testing.T) {
	tmpl, err := Parse("пр*29*красный и н*10*вый, з*11*горать")
	require.NoError(t, err)
	assert.Equal(t, []string{"29", "10", "11"}, tmpl.RuleIDs())
}
