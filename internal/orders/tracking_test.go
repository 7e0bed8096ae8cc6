package orders

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var trackingRe = regexp.MustCompile(`^CAT-[A-Z0-9!@#$%&*]{12}$`)

func TestGenerateTrackingIDFormat(t *testing.T) {
	for i := 0; i < 500; i++ {
		id := GenerateTrackingID()
		assert.Regexp(t, trackingRe, id)
	}
}

func TestGenerateTrackingIDUsesWholeAlphabet(t *testing.T) {
	seen := map[rune]bool{}
	for i := 0; i < 2000; i++ {
		for _, r := range strings.TrimPrefix(GenerateTrackingID(), "CAT-") {
			seen[r] = true
		}
	}
	// 24000 draws dari 43 simbol: peluang ada simbol tak muncul praktis nol
	assert.Len(t, seen, len(trackingAlphabet))
}
