package httpapi

import (
	"strconv"
	"strings"
	"time"

	"trade-journal/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

func parseBearer(h string) string {
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func currentUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func (s *Server) setRefreshCookie(c *gin.Context, token string, expiry time.Time) {
	host, _, _ := strings.Cut(c.Request.Host, ":")
	isLocal := host == "localhost" || host == "127.0.0.1"

	c.SetCookie(
		refreshCookieName,
		token,
		int(time.Until(expiry).Seconds()),
		"/",
		"",
		!isLocal, // Secure: only if not local
		true,     // HttpOnly
	)
}

// filterFromQuery 從 query string 組出過濾條件,缺漏的欄位視為不設限。
func filterFromQuery(c *gin.Context) journal.FilterState {
	return journal.FilterState{
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		EA:        c.Query("ea"),
		Symbol:    c.Query("symbol"),
		Timeframe: c.Query("timeframe"),
		Side:      c.Query("side"),
		Session:   c.Query("session"),
	}
}

func parseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
