package moderation

import (
	"log/slog"
	"testing"

	"presence-chat/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newModerator(t *testing.T, words ...string) *Moderator {
	t.Helper()
	mod, err := NewModerator(words, '#', logs.GetLoggerFromLevel(slog.LevelError))
	require.NoError(t, err)
	return mod
}

func TestModerator_Censor_Chat_Lines(t *testing.T) {
	mod := newModerator(t, "badger", "snake", "mushroom")

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{"clean line is untouched", "see you at noon", "see you at noon", nil},
		{"empty line", "", "", nil},
		{"single word keeps surrounding text", "hey badger, over here", "hey ######, over here", []string{"badger"}},
		{"every occurrence", "snake snake", "##### #####", []string{"snake", "snake"}},
		{"case and dots", "a S.N.A.K.E appeared", "a ######### appeared", []string{"snake"}},
		{"leet digits and symbols", "mu$hr00m soup", "######## soup", []string{"mushroom"}},
		{"accents elsewhere are kept", "déjà vu, badger", "déjà vu, ######", []string{"badger"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			content, words := mod.Censor(tt.input)

			req.Equal(tt.expected, content)
			req.Equal(tt.words, words)
		})
	}
}

func TestModerator_Length_Is_Preserved(t *testing.T) {
	req := require.New(t)
	mod := newModerator(t, "badger")
	input := "B-a-d-g-e-r!"

	content, _ := mod.Censor(input)

	// Noise inside a match is censored too, so the rune count never changes
	req.Equal(len([]rune(input)), len([]rune(content)))
	req.Equal("###########!", content)
}

func TestModerator_Noise_Only_Words(t *testing.T) {
	req := require.New(t)

	// Given a dictionary polluted with punctuation
	mod := newModerator(t, "...", "", "badger")

	// Then punctuation in messages is left alone
	content, words := mod.Censor("wait...")
	req.Equal("wait...", content)
	req.Nil(words)

	// And real words are still caught
	content, words = mod.Censor("badger...")
	req.Equal("######...", content)
	req.Equal([]string{"badger"}, words)
}

func TestModerator_Without_Words(t *testing.T) {
	_, err := NewModerator([]string{"...", " ", "--"}, '#', slog.Default())

	require.ErrorIs(t, err, errors.ErrEmptyWords)
}
