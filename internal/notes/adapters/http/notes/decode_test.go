package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		want    CreateNoteRequest
	}{
		{
			name: "exact keys",
			body: `{"title":"t","body":"b","category":"work"}`,
			want: CreateNoteRequest{Title: "t", Body: "b", Category: "work"},
		},
		{
			name: "surrounding whitespace",
			body: "  {\"title\":\"t\",\"body\":\"b\"}\n",
			want: CreateNoteRequest{Title: "t", Body: "b"},
		},
		{name: "upper case key", body: `{"TITLE":"t","Body":"b"}`, wantErr: errUnknownField},
		{name: "mixed case duplicate", body: `{"title":"t","Title":"x","body":"b"}`, wantErr: errUnknownField},
		{name: "extra key", body: `{"title":"t","body":"b","owner":"mallory"}`, wantErr: errUnknownField},
		{name: "array", body: `[]`, wantErr: errNotObject},
		{name: "empty", body: ``, wantErr: errNotObject},
		{name: "trailing object", body: `{"title":"t"} {}`, wantErr: errTrailingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CreateNoteRequest
			err := decodeObject([]byte(tt.body), &got)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("wrong type", func(t *testing.T) {
		var got CreateNoteRequest
		require.Error(t, decodeObject([]byte(`{"title":1,"body":"b"}`), &got))
	})

	t.Run("update accepts a subset", func(t *testing.T) {
		var got UpdateNoteRequest
		require.NoError(t, decodeObject([]byte(`{"category":"work"}`), &got))
		assert.Nil(t, got.Title)
		require.NotNil(t, got.Category)
		assert.Equal(t, "work", *got.Category)
	})
}
