package discovery

import (
	"maps"
	"slices"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// Clone returns a copy of the map. A nil map stays nil.
func (t TXTRecordMap) Clone() TXTRecordMap {
	if t == nil {
		return nil
	}
	return maps.Clone(t)
}

// Equal reports whether both maps hold the same pairs. Nil and empty are equal.
func (t TXTRecordMap) Equal(other TXTRecordMap) bool {
	return maps.Equal(t, other)
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings,
// sorted by key so the output is stable.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	keys := slices.Sorted(maps.Keys(txt))
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+txt[k])
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
// Keys and values are trimmed; a key without "=" maps to the empty string.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap, len(strs))
	for _, s := range strs {
		key, value, _ := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		txt[key] = strings.TrimSpace(value)
	}
	return txt
}
