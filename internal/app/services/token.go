package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"canteen/internal/domain/models"
)

const tokenPrefixLen = 5

// GenerateToken derives the next per-shop per-day order token, format
// PREFIX_DDMMYY_SEQ. The sequence restarts at 001 each day for each shop
// prefix. The derivation is a scan over the current order snapshot, so it is
// only unique when executed inside the same store update as the order write.
//
// The second return value is false when the shop name yields no usable prefix
// and a timestamp fallback token was produced instead; the caller logs that
// anomaly.
func GenerateToken(shopName string, now time.Time, orders []models.Order) (string, bool) {
	prefix := tokenPrefix(shopName)
	if prefix == "" {
		return fmt.Sprintf("ORD_%d", now.UnixNano()), false
	}

	dateStr := now.Format("020106")
	scope := prefix + "_" + dateStr + "_"

	maxSeq := 0
	for _, order := range orders {
		if !strings.HasPrefix(order.TokenNumber, scope) {
			continue
		}
		seq, err := strconv.Atoi(order.TokenNumber[len(scope):])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%03d", scope, maxSeq+1), true
}

// tokenPrefix strips non-alphanumerics, uppercases and truncates the shop
// name to five characters.
func tokenPrefix(shopName string) string {
	var b strings.Builder
	for _, r := range shopName {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == tokenPrefixLen {
				break
			}
		}
	}
	return strings.ToUpper(b.String())
}
