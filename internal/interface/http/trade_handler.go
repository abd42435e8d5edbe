package httpapi

import (
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"trade-journal/internal/application/analytics"
	"trade-journal/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListTrades(c *gin.Context) {
	state := filterFromQuery(c)
	records, err := s.queryUC.Snapshot(c.Request.Context(), currentUserID(c), state)
	if err != nil {
		log.Printf("[Trades] list failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load trades", "error_code": errCodeInternal})
		return
	}
	if records == nil {
		records = []journal.TradeRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trades": records, "count": len(records)})
}

func (s *Server) handleCreateTrade(c *gin.Context) {
	var rec journal.TradeRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "error_code": errCodeBadRequest})
		return
	}

	id, err := s.trades.Insert(c.Request.Context(), currentUserID(c), rec)
	if err != nil {
		log.Printf("[Trades] insert failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to save trade", "error_code": errCodeInternal})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": id})
}

func (s *Server) handleDeleteTrade(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid trade id", "error_code": errCodeBadRequest})
		return
	}

	if err := s.trades.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "trade not found", "error_code": errCodeNotFound})
			return
		}
		log.Printf("[Trades] delete failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete trade", "error_code": errCodeInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleImportTrades(c *gin.Context) {
	var src io.Reader = c.Request.Body
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "cannot open uploaded file", "error_code": errCodeBadRequest})
			return
		}
		defer f.Close()
		src = f
	}

	result, err := s.importUC.ImportCSV(c.Request.Context(), currentUserID(c), src)
	if err != nil {
		log.Printf("[Trades] import failure: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "error_code": errCodeBadRequest})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (s *Server) handleExportCSV(c *gin.Context) {
	state := filterFromQuery(c)
	records, err := s.queryUC.Snapshot(c.Request.Context(), currentUserID(c), state)
	if err != nil {
		log.Printf("[Trades] export failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to load trades", "error_code": errCodeInternal})
		return
	}

	doc, err := analytics.ExportCSV(records)
	if err != nil {
		log.Printf("[Trades] export encode failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to encode csv", "error_code": errCodeInternal})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="trades.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(doc))
}
