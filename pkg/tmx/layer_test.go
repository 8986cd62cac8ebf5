package tmx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/garden-quest/pkg/world"
)

func TestParseGrid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, g world.Grid)
	}{
		{
			name:  "csv rows",
			input: "\n1,2,3,\n4,5,6\n",
			check: func(t *testing.T, g world.Grid) {
				assert.Equal(t, [3]int{1, 2, 3}, [3]int(g[0][:3]))
				assert.Equal(t, [3]int{4, 5, 6}, [3]int(g[1][:3]))
				assert.Equal(t, 0, g[2][0])
			},
		},
		{
			name:  "blank lines do not advance rows",
			input: "\n\n\n7\n\n8",
			check: func(t *testing.T, g world.Grid) {
				assert.Equal(t, 7, g[0][0])
				assert.Equal(t, 8, g[1][0])
			},
		},
		{
			name:  "any non-digit separates",
			input: "10 x 20;30\t40",
			check: func(t *testing.T, g world.Grid) {
				assert.Equal(t, [4]int{10, 20, 30, 40}, [4]int(g[0][:4]))
			},
		},
		{
			name:  "carriage returns",
			input: "1,2\r\n3,4\r\n",
			check: func(t *testing.T, g world.Grid) {
				assert.Equal(t, 2, g[0][1])
				assert.Equal(t, 3, g[1][0])
			},
		},
		{
			name:  "full grid",
			input: grid("9"),
			check: func(t *testing.T, g world.Grid) {
				for r := range world.Rows {
					for c := range world.Cols {
						assert.Equal(t, 9, g[r][c])
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGrid(tt.input)
			require.NoError(t, err)
			tt.check(t, g)
		})
	}
}

func TestParseGrid_Signed(t *testing.T) {
	for _, input := range []string{"1,-5,2", "+3", "1,2\n-0"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseGrid(input)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	g, err := ParseGrid("1 - 2,3-")
	require.NoError(t, err, "a sign not followed by a digit is a separator")
	assert.Equal(t, [3]int{1, 2, 3}, [3]int(g[0][:3]))
}

func TestParseGrid_Capacity(t *testing.T) {
	_, err := ParseGrid("1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17")
	assert.ErrorIs(t, err, ErrCapacity)

	_, err = ParseGrid("1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12")
	assert.ErrorIs(t, err, ErrCapacity)

	_, err = ParseGrid("1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n")
	assert.NoError(t, err, "a trailing newline after the last row is fine")
}
