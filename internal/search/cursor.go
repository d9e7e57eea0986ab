package search

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/mklincoln/factorymap/internal/core/model"
)

// cursor is the decoded form of the opaque pagination token: the (name, id)
// sort key of the boundary record, the direction to read in, and a hash of
// the filter state that minted it. A token presented against a different
// filter state fails the hash check and the search restarts from page one.
type cursor struct {
	Name   string              `json:"n"`
	ID     int64               `json:"i"`
	Filter string              `json:"f"`
	Dir    model.PageDirection `json:"d"`
}

func filterHash(f model.FilterState) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(f.CanonicalKey()))
}

func encodeCursor(c cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(tok string) (cursor, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return cursor{}, false
	}
	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return cursor{}, false
	}
	if c.Dir != model.PageNext && c.Dir != model.PagePrev {
		return cursor{}, false
	}
	return c, true
}
