package httpapi

import (
	"log"
	"net/http"

	"trade-journal/internal/application/analytics"
	"trade-journal/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

// snapshot 取套用過濾後的交易,統計端點共用。
func (s *Server) snapshot(c *gin.Context) ([]journal.TradeRecord, bool) {
	records, err := s.queryUC.Snapshot(c.Request.Context(), currentUserID(c), filterFromQuery(c))
	if err != nil {
		log.Printf("[Stats] snapshot failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load trades", "error_code": errCodeInternal})
		return nil, false
	}
	return records, true
}

func (s *Server) handleSummary(c *gin.Context) {
	records, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": analytics.Summarize(records)})
}

func (s *Server) handleStatsEA(c *gin.Context) {
	s.respondRows(c, analytics.ByEA)
}

func (s *Server) handleStatsSymbol(c *gin.Context) {
	s.respondRows(c, analytics.BySymbol)
}

func (s *Server) handleStatsTimeframe(c *gin.Context) {
	s.respondRows(c, analytics.ByTimeframe)
}

func (s *Server) handleStatsCloseReason(c *gin.Context) {
	s.respondRows(c, analytics.ByCloseReason)
}

func (s *Server) respondRows(c *gin.Context, agg func([]journal.TradeRecord) []analytics.AggregateRow) {
	records, ok := s.snapshot(c)
	if !ok {
		return
	}
	rows := agg(records)
	if rows == nil {
		rows = []analytics.AggregateRow{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rows": rows})
}

func (s *Server) handleStatsDayOfWeek(c *gin.Context) {
	records, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bins": analytics.DayOfWeekBins(records)})
}

func (s *Server) handleStatsHourOfDay(c *gin.Context) {
	records, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bins": analytics.HourOfDayBins(records, s.queryUC.Location())})
}

func (s *Server) handleStatsConfluences(c *gin.Context) {
	fourth := analytics.ConfluenceDim(c.Query("dim"))
	switch fourth {
	case analytics.DimNone, analytics.DimPattern, analytics.DimCandle, analytics.DimEmotion, analytics.DimSession:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown confluence dimension", "error_code": errCodeBadRequest})
		return
	}
	records, ok := s.snapshot(c)
	if !ok {
		return
	}
	rows := analytics.Confluences(records, fourth)
	if rows == nil {
		rows = []analytics.AggregateRow{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rows": rows})
}

func (s *Server) handleStatsSniper(c *gin.Context) {
	records, ok := s.snapshot(c)
	if !ok {
		return
	}
	rows := analytics.SniperConfluences(records)
	if rows == nil {
		rows = []analytics.AggregateRow{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rows": rows})
}

func (s *Server) handleStatsHeatmap(c *gin.Context) {
	records, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "grid": analytics.Heatmap(records)})
}
