package order

import (
	"fmt"
	"math/rand"
	"time"
)

// MaxNumberAttempts bounds how often a colliding order or receipt number is regenerated.
const MaxNumberAttempts = 3

// NewNumber returns "<prefix>-<yyyymmddHHMMSS>-<4 digits>".
func NewNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.UTC().Format("20060102150405"), rand.Intn(10000))
}
