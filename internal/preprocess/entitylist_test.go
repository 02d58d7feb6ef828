package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Entity
		wantErr bool
	}{
		{
			name:  "python literal single quotes",
			input: `[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]`,
			want:  []Entity{{Name: "Animation"}, {Name: "Comedy"}},
		},
		{
			name:  "json double quotes",
			input: `[{"id": 16, "name": "Animation"}]`,
			want:  []Entity{{Name: "Animation"}},
		},
		{
			name:  "crew entries keep job",
			input: `[{'name': 'John Lasseter', 'job': 'Director'}, {'name': 'Joss Whedon', 'job': 'Screenplay'}]`,
			want:  []Entity{{Name: "John Lasseter", Job: "Director"}, {Name: "Joss Whedon", Job: "Screenplay"}},
		},
		{
			name:  "apostrophe inside escaped string",
			input: `[{'name': 'Pixar\'s Finest'}]`,
			want:  []Entity{{Name: "Pixar's Finest"}},
		},
		{
			name:  "none values tolerated",
			input: `[{'name': 'Warner Bros.', 'id': None}]`,
			want:  []Entity{{Name: "Warner Bros."}},
		},
		{
			name:  "entries without a name dropped",
			input: `[{'id': 12}, {'name': 'DreamWorks'}]`,
			want:  []Entity{{Name: "DreamWorks"}},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "nan marker",
			input: "NaN",
			want:  nil,
		},
		{
			name:  "empty list",
			input: "[]",
			want:  nil,
		},
		{
			name:    "truncated object",
			input:   `[{'name': 'Action'`,
			wantErr: true,
		},
		{
			name:    "not a list",
			input:   `{'name': 'Action'}`,
			wantErr: true,
		},
		{
			name:    "missing comma",
			input:   `[{'name': 'A'} {'name': 'B'}]`,
			wantErr: true,
		},
		{
			name:    "nested container rejected",
			input:   `[{'name': {'inner': 1}}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntityList(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEntity(t *testing.T) {
	entity, ok, err := ParseEntity(`{'id': 10194, 'name': 'Toy Story Collection', 'poster_path': '/7G9915LfUQ2lVfwMEEhDsn3kT4B.jpg'}`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Toy Story Collection", entity.Name)

	_, ok, err = ParseEntity("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ParseEntity("nan")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseEntity(`{'name': `)
	assert.Error(t, err)
}
