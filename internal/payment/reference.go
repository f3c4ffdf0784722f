package payment

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewReference returns a payment reference like NG-20261018-153000-042-7731.
// The last group is random so two checkouts in the same millisecond differ.
func NewReference(now time.Time) string {
	now = now.UTC()
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("NG-%s-%03d-%04d", now.Format("20060102-150405"), millis, n.Int64())
}
