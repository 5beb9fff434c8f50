package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"go-sysadmin/internal/mq/kafka"

	"github.com/gin-gonic/gin"
)

var skipOperaLogPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

var sensitiveKeys = []string{"password", "passwd", "pwd", "new_password", "old_password", "token", "authorization"}

// OperaLog 采集操作日志并经 kafka 异步落库（消费端见 internal/consumer/operalog）。
// 事件字段与 sys_opera_log 列对齐。
func OperaLog(sender *kafka.OperaLogSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawPath := c.Request.URL.Path
		if _, ok := skipOperaLogPaths[rawPath]; ok {
			c.Next()
			return
		}
		start := time.Now()
		var bodyBytes []byte
		if c.Request.Body != nil {
			b, _ := io.ReadAll(io.LimitReader(c.Request.Body, 4096))
			bodyBytes = b
			c.Request.Body = io.NopCloser(bytes.NewBuffer(b))
		}
		c.Next()
		if sender == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = rawPath
		}
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		ua := c.Request.UserAgent()
		if len(ua) > 255 {
			ua = ua[:255]
		}
		status := 0
		if c.Writer.Status() < 400 && len(c.Errors) == 0 {
			status = 1
		}
		e := map[string]interface{}{
			"title":      deriveTitle(path, c.Request.Method),
			"path":       path,
			"method":     c.Request.Method,
			"code":       c.Writer.Status(),
			"status":     status,
			"cost_time":  float64(time.Since(start).Microseconds()) / 1000.0,
			"ip":         c.ClientIP(),
			"user_agent": ua,
			"opera_time": time.Now().Format(time.RFC3339),
			"args":       sanitizeJSON(bodyBytes),
		}
		if v, ok := c.Get("username"); ok {
			e["username"] = v
		}
		if len(c.Errors) > 0 {
			errs := make([]string, 0, len(c.Errors))
			for _, er := range c.Errors {
				errs = append(errs, er.Error())
			}
			e["msg"] = strings.Join(errs, "; ")
		}
		headers := map[string]string{}
		if traceID, ok := c.Get("trace_id"); ok {
			e["trace_id"] = traceID
			if s, ok2 := traceID.(string); ok2 {
				headers["trace_id"] = s
			}
		}
		b, _ := json.Marshal(e)
		sender.Enqueue(kafka.AsyncMessage{Ctx: c.Request.Context(), Value: b, Headers: headers})
	}
}

func sanitizeJSON(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	if len(src) > 4096 {
		src = src[:4096]
	}
	var m interface{}
	if json.Unmarshal(src, &m) != nil {
		return string(src)
	}
	sanitizeValue(&m)
	b, err := json.Marshal(m)
	if err != nil {
		return string(src)
	}
	return string(b)
}

func sanitizeValue(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, vv := range val {
			lower := strings.ToLower(k)
			for _, s := range sensitiveKeys {
				if lower == s {
					val[k] = "***"
					goto NEXT
				}
			}
			sanitizeValue(&vv)
			val[k] = vv
		NEXT:
		}
	case []interface{}:
		for i, elem := range val {
			sanitizeValue(&elem)
			val[i] = elem
		}
	}
}

func deriveTitle(path, method string) string {
	if path == "" {
		return method
	}
	p := strings.Trim(path, "/")
	if p == "" {
		return method
	}
	p = strings.ReplaceAll(p, "/", "_")
	p = strings.ReplaceAll(p, ":", "")
	return strings.ToLower(method + "_" + p)
}
