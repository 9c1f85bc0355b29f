package cache

import "encoding/json"

func marshalString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

func unmarshalString(data []byte) (string, error) {
	var s string
	err := json.Unmarshal(data, &s)
	return s, err
}
