package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2.10.9.593", want: "2.10.9.593"},
		{in: " 01.07.19246.2 ", want: "01.07.19246.2"},
		{in: "3", want: "3"},
		{in: "", wantErr: true},
		{in: "2.x", wantErr: true},
		{in: "2..1", wantErr: true},
		{in: "-1.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2.10.7", "2.10.9", -1},
		{"2.10.9", "2.10.9.593", -1},
		{"2.10.9.0", "2.10.9", 0},
		{"2.10", "2.9.99", 1},
		{"01.07.19246.2", "1.7.19246.2", 0},
		{"1.13.0.6518", "1.12.0.6145", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.a).Compare(MustParse(tt.b)))
			assert.Equal(t, -tt.want, MustParse(tt.b).Compare(MustParse(tt.a)))
		})
	}
}

func TestAtLeast_Monotonic(t *testing.T) {
	minimum := "2.10.9"

	ok, err := AtLeast("2.10.7", minimum)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = AtLeast("2.10.9", minimum)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = AtLeast("2.10.9.593", minimum)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = AtLeast("garbage", minimum)
	assert.Error(t, err)
	_, err = AtLeast("1.0", "garbage")
	assert.Error(t, err)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("not.a.version") })
	assert.True(t, Version{}.IsZero())
	assert.True(t, MustParse("1.0").Less(MustParse("1.0.1")))
}
