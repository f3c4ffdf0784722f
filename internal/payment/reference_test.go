package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReference(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		at := time.Date(2026, 10, 18, 15, 30, 0, 42*int(time.Millisecond), time.UTC)
		ref := NewReference(at)

		parts := strings.Split(ref, "-")
		if assert.Len(t, parts, 5) {
			assert.Equal(t, "NG", parts[0])
			assert.Equal(t, "20261018", parts[1])
			assert.Equal(t, "153000", parts[2])
			assert.Equal(t, "042", parts[3])
			assert.Len(t, parts[4], 4)
		}
	})

	t.Run("Uses UTC", func(t *testing.T) {
		sast := time.FixedZone("SAST", 2*60*60)
		ref := NewReference(time.Date(2026, 10, 19, 1, 0, 0, 0, sast))
		assert.True(t, strings.HasPrefix(ref, "NG-20261018-230000-"))
	})
}
