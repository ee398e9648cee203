package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageContentType(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"me.jpg", "image/jpeg", false},
		{"me.JPEG", "image/jpeg", false},
		{"me.png", "image/png", false},
		{"me.gif", "", true},
		{"me", "", true},
		{"me.png.exe", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageContentType(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageKey(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	key, err := ImageKey(12, "alice", "Holiday.PNG", now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^profile_pics/12_[0-9a-f]{32}\.png$`), key)

	again, err := ImageKey(12, "alice", "Holiday.PNG", now.Add(time.Nanosecond))
	require.NoError(t, err)
	assert.NotEqual(t, key, again)

	_, err = ImageKey(12, "alice", "notes.txt", now)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
