package store

import "fmt"

// Badger key layout:
//
//	dict:<field>:<position>     entry JSON, position zero-padded so byte order is insertion order
//	stats:<score>:<decision>    decision count of the last saved run
//	meta:saved                  present once anything has been saved
const (
	dictPrefix  = "dict:"
	statsPrefix = "stats:"
	metaPrefix  = "meta:"
)

// fieldPrefix returns the key prefix of all entries of field.
// Field names never contain ':', so prefixes of distinct fields do not overlap.
func fieldPrefix(field string) []byte {
	return []byte(dictPrefix + field + ":")
}

func entryKey(field string, position int) []byte {
	return fmt.Appendf(nil, "%s%s:%08d", dictPrefix, field, position)
}

func statKey(score int, decision string) []byte {
	return fmt.Appendf(nil, "%s%03d:%s", statsPrefix, score, decision)
}

func savedMarkerKey() []byte {
	return []byte(metaPrefix + "saved")
}
