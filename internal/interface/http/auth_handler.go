package httpapi

import (
	"log"
	"net/http"
	"time"

	"trade-journal/internal/application/auth"
	authDomain "trade-journal/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "error_code": errCodeBadRequest})
		return
	}

	res, err := s.loginUC.Execute(c.Request.Context(), auth.LoginInput{
		Email:    body.Email,
		Password: body.Password,
		Meta: authDomain.TokenMeta{
			UserAgent: c.GetHeader("User-Agent"),
			IP:        c.ClientIP(),
		},
	})
	if err != nil {
		log.Printf("[Auth] login failure for %s: %v", body.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid email or password", "error_code": errCodeInvalidCredentials})
		return
	}

	if res.OTPRequired {
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"otp_required": true,
			"challenge_id": res.ChallengeID,
			"error_code":   errCodeOTPRequired,
		})
		return
	}

	s.setRefreshCookie(c, res.Token.RefreshToken, res.Token.RefreshExpiry)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    res.User.ID,
			"email": res.User.Email,
			"role":  res.User.Role,
		},
		"access_token": res.Token.AccessToken,
		"token_type":   "Bearer",
		"expiry":       res.Token.AccessExpiry.Format(time.RFC3339),
	})
}

func (s *Server) handleVerifyOTP(c *gin.Context) {
	var body struct {
		ChallengeID string `json:"challenge_id"`
		Code        string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "error_code": errCodeBadRequest})
		return
	}

	res, err := s.loginUC.VerifyOTP(c.Request.Context(), auth.VerifyOTPInput{
		ChallengeID: body.ChallengeID,
		Code:        body.Code,
		Meta: authDomain.TokenMeta{
			UserAgent: c.GetHeader("User-Agent"),
			IP:        c.ClientIP(),
		},
	})
	if err != nil {
		log.Printf("[Auth] otp verify failure for challenge %s: %v", body.ChallengeID, err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid or expired code", "error_code": errCodeOTPInvalid})
		return
	}

	s.setRefreshCookie(c, res.Token.RefreshToken, res.Token.RefreshExpiry)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":    res.User.ID,
			"email": res.User.Email,
			"role":  res.User.Role,
		},
		"access_token": res.Token.AccessToken,
		"token_type":   "Bearer",
		"expiry":       res.Token.AccessExpiry.Format(time.RFC3339),
	})
}

func (s *Server) handleResendOTP(c *gin.Context) {
	var body struct {
		ChallengeID string `json:"challenge_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "error_code": errCodeBadRequest})
		return
	}

	id, err := s.loginUC.ResendOTP(c.Request.Context(), body.ChallengeID)
	if err != nil {
		log.Printf("[Auth] otp resend failure for challenge %s: %v", body.ChallengeID, err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "challenge expired", "error_code": errCodeOTPInvalid})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "challenge_id": id})
}

func (s *Server) handleRefresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "refresh token missing", "error_code": errCodeUnauthorized})
		return
	}

	pair, err := s.refreshUC.Execute(c.Request.Context(), refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid refresh token", "error_code": errCodeUnauthorized})
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiry)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": pair.AccessToken,
		"token_type":   "Bearer",
		"expiry":       pair.AccessExpiry.Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)
	if refreshToken != "" {
		_ = s.logoutUC.Execute(c.Request.Context(), refreshToken)
	}

	c.SetCookie(
		refreshCookieName,
		"",
		-1,
		"/",
		"",
		false,
		true,
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
