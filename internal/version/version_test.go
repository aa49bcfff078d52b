package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    []int
		wantErr bool
	}{
		{"1.0.0", []int{1, 0, 0}, false},
		{"1.4.2.0", []int{1, 4, 2, 0}, false},
		{"v2.1", []int{2, 1}, false},
		{"V3", []int{3}, false},
		{" 10.20.30 ", []int{10, 20, 30}, false},
		{"", nil, true},
		{"v", nil, true},
		{"vV1.0", nil, true},
		{"vv1.0", nil, true},
		{"1..2", nil, true},
		{"1.2.", nil, true},
		{"1.-2", nil, true},
		{"1.2a", nil, true},
		{"1.2.3-beta", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, igaerrors.IsInvalid(err), "parse errors should be ErrInvalid")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Segments())
		})
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "1.0.0.0", MustParse("v1.0.0.0").String())
	assert.Equal(t, "7", MustParse("7").String())
}

func TestSegmentsIsCopy(t *testing.T) {
	v := MustParse("1.2.3")
	s := v.Segments()
	s[0] = 99
	assert.Equal(t, "1.2.3", v.String())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.1", -1},
		{"1.0.1", "1.0.0", 1},
		{"2.0.0", "2.0.0", 0},
		{"2.1", "2.1.0", 0},
		{"2.1.0.0", "2.1", 0},
		{"1.10", "1.9", 1},
		{"3.0.0", "2.5.0", 1},
		{"1.0.0.1", "1.0.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.a).Compare(MustParse(tt.b)))
		})
	}
}

func TestPadPreservesPrefix(t *testing.T) {
	for _, input := range []string{"1", "1.4", "1.4.2", "9.8.7.6"} {
		v := MustParse(input)
		for extra := 0; extra <= 3; extra++ {
			k := v.Len() + extra
			padded := v.Pad(k)
			require.Equal(t, k, padded.Len())
			assert.Equal(t, v.Segments(), padded.Segments()[:v.Len()])
			for _, s := range padded.Segments()[v.Len():] {
				assert.Equal(t, 0, s)
			}
		}
	}
}

func TestPadShorterIsNoop(t *testing.T) {
	v := MustParse("1.2.3")
	assert.Equal(t, "1.2.3", v.Pad(2).String())
}

func TestPadString(t *testing.T) {
	tests := []struct {
		input string
		k     int
		want  string
	}{
		{"2", 3, "2.0.0"},
		{"2.1", 3, "2.1.0"},
		{"2.1.0", 3, "2.1.0"},
		{"2.1.0.0", 3, "2.1.0.0"},
		{"01.2", 4, "01.2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, PadString(tt.input, tt.k))
		})
	}
}
