package utils

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// chunkNamespace scopes deterministic chunk ids to this service
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ogtriage/chunks"))

func GetNewUUID() string {
	return uuid.New().String()
}

// GetDeterministicUUID is stable for the same parts, so re-ingesting a source
// overwrites its points instead of duplicating them.
func GetDeterministicUUID(parts ...string) string {
	return uuid.NewSHA1(chunkNamespace, []byte(strings.Join(parts, "\x00"))).String()
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
