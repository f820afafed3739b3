package util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParsePathID 解析路径参数中的数字ID。非法或为 0 时直接响应 400
// 并返回 false，调用方 return 即可。
func ParsePathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}
