package cloudinary

import (
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMaterialPublicID(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "simple deck", file: "Quarterly Review.pptx", want: "material-quarterly-review-"},
		{name: "nested path", file: "uploads/Final Deck (v2).pdf", want: "material-final-deck-v2-"},
		{name: "only symbols", file: "###.pdf", want: "material-material-"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := materialPublicID(tc.file)
			require.True(t, strings.HasPrefix(got, tc.want), "got %q", got)
			require.Greater(t, len(got), len(tc.want))
		})
	}
}

func TestMaterialPublicIDUnique(t *testing.T) {
	first := materialPublicID("slides.pdf")
	second := materialPublicID("slides.pdf")
	require.NotEqual(t, first, second)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.New(io.Discard))
	require.Error(t, err)
}
