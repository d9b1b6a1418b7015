package payment

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// FallbackTransactionID builds a client-side transaction id for responses
// that carry none: TXN-<last 8 digits of epoch-ms>-<6-char uppercase base36>.
func FallbackTransactionID(now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}

	var suffix strings.Builder
	for i := 0; i < 6; i++ {
		suffix.WriteByte(base36Alphabet[rand.Intn(len(base36Alphabet))])
	}

	return fmt.Sprintf("TXN-%s-%s", millis, suffix.String())
}
