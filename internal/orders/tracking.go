package orders

import (
	"crypto/rand"
	"math/big"
)

const (
	trackingPrefix   = "CAT-"
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	trackingLen      = 12
)

// GenerateTrackingID returns "CAT-" followed by 12 symbols drawn uniformly
// from trackingAlphabet.
func GenerateTrackingID() string {
	b := make([]byte, trackingLen)
	base := big.NewInt(int64(len(trackingAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			panic(err) // crypto/rand tidak pernah gagal di platform yang didukung
		}
		b[i] = trackingAlphabet[n.Int64()]
	}
	return trackingPrefix + string(b)
}
