package service

import (
	"encoding/json"
	"strconv"
)

func jwtUID(uid int64) string { return strconv.FormatInt(uid, 10) }

func jsonUnmarshal(s string, v interface{}) error { return json.Unmarshal([]byte(s), v) }
