package utils

import "strconv"

func BuildUserCacheKey(id int64) string {
	return "users:summary:v1:id=" + strconv.FormatInt(id, 10)
}
