// Package versioning содержит примитивы кэш-валидации: отпечатки коллекций
// и проверки заголовков If-None-Match / If-Match.
package versioning

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	unitSeparator   = 0x1f
	recordSeparator = 0x1e
	anyTag          = "*"
	weakPrefix      = "W/"
)

// Versioned - элемент коллекции, участвующий в вычислении отпечатка.
type Versioned interface {
	FingerprintID() string
	FingerprintVersion() string
}

// ComputeCollectionFingerprint возвращает strong ETag в кавычках для упорядоченной коллекции.
// Один и тот же список (те же id, версии и порядок) всегда даёт один и тот же отпечаток.
func ComputeCollectionFingerprint[T Versioned](items []T) string {
	// blake2b.New256 возвращает ошибку только для ключа длиннее 64 байт
	h, _ := blake2b.New256(nil)
	buf := make([]byte, 0, 64)
	for _, item := range items {
		buf = buf[:0]
		buf = append(buf, item.FingerprintID()...)
		buf = append(buf, unitSeparator)
		buf = append(buf, item.FingerprintVersion()...)
		buf = append(buf, recordSeparator)
		h.Write(buf)
	}
	return `"` + hex.EncodeToString(h.Sum(nil)) + `"`
}

// EntityETag - отпечаток одной сущности.
func EntityETag(id string, version int64) string {
	return ComputeCollectionFingerprint([]Item{{ID: id, Version: VersionFromInt(version)}})
}

// Item - простая реализация Versioned.
type Item struct {
	ID      string
	Version string
}

func (i Item) FingerprintID() string      { return i.ID }
func (i Item) FingerprintVersion() string { return i.Version }

func VersionFromInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func VersionFromTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ValidatePreconditionMatch проверяет If-Match. Пустой заголовок не накладывает условий.
func ValidatePreconditionMatch(supplied, current string) error {
	if strings.TrimSpace(supplied) == "" {
		return nil
	}
	if matchesAny(supplied, current) {
		return nil
	}
	return ErrPreconditionFailed
}

// ConditionalRead проверяет If-None-Match. При совпадении возвращает ErrNotModified
// вместе с текущим отпечатком, чтобы его можно было отдать в заголовке ответа.
func ConditionalRead(supplied, current string) (string, error) {
	if strings.TrimSpace(supplied) == "" {
		return current, nil
	}
	if matchesAny(supplied, current) {
		return current, ErrNotModified
	}
	return current, nil
}

func matchesAny(header, current string) bool {
	want := normalize(current)
	for _, candidate := range strings.Split(header, ",") {
		c := strings.TrimSpace(candidate)
		if c == anyTag {
			return true
		}
		if c != "" && normalize(c) == want {
			return true
		}
	}
	return false
}

func normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimPrefix(tag, weakPrefix)
	return strings.Trim(tag, `"`)
}
