package shapefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Top_2_Activities", "Top_2_Acti"},
		{"Top_10_ID", "Top_10_ID"},
		{"Zemědělství", "Zemedelstv"},
		{" a b-c ", "a_b_c"},
		{"x..y", "x_y"},
		{"%%%", "FIELD"},
		{"", "FIELD"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldName(tt.in))
		})
	}
}

func TestFieldNames_UniqueWithSuffix(t *testing.T) {
	t.Parallel()

	got, renames := FieldNames([]string{"Top_2_Activities", "Top_2_ActiXX", "abc", "ABC", "farm"})
	assert.Equal(t, []string{"Top_2_Acti", "Top_2_Ac_1", "abc", "ABC_1", "farm"}, got)
	assert.Equal(t, []Rename{
		{From: "Top_2_Activities", To: "Top_2_Acti"},
		{From: "Top_2_ActiXX", To: "Top_2_Ac_1"},
		{From: "ABC", To: "ABC_1"},
	}, renames)

	for _, n := range got {
		assert.LessOrEqual(t, len(n), MaxFieldName)
	}
}
