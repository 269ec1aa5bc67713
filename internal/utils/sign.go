package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/amccague/zscore/internal/models"
)

// GenerateHMAC generates an HMAC over every stored field of a run
func GenerateHMAC(run *models.Run, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	fields := []string{
		run.ID,
		run.Executable,
		strconv.Itoa(run.Score),
		run.CasesJSON,
		run.Error,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, f := range fields {
		// length prefix keeps field boundaries unambiguous
		h.Write([]byte(strconv.Itoa(len(f)) + ":" + f + "|"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC reports whether the run's HMAC matches its fields
func VerifyHMAC(run *models.Run, secret string) bool {
	want := GenerateHMAC(run, secret)
	return hmac.Equal([]byte(run.HMAC), []byte(want))
}
