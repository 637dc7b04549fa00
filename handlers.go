package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"strukscan/models"
	"strukscan/pkg/extract"
	"strukscan/pkg/ocr"
	"strukscan/pkg/store"
	"strukscan/process/report"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthzHandler)
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/extract", extractTextHandler)
	authGroup.POST("/receipts", uploadReceiptHandler)
	authGroup.GET("/receipts", listReceiptsHandler)
	authGroup.GET("/receipts/export", exportReceiptsHandler)
	authGroup.GET("/receipts/:id", getReceiptHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func healthzHandler(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, status)
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": c.GetString("username"), "role": c.GetString("role")})
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func registerHandler(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := store.CreateUser(db, req.Username, req.Password, models.RoleUser); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, store.ErrUserExists) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := store.Authenticate(db, req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

// extractTextHandler runs field extraction over text that was recognized
// elsewhere. Nothing is stored.
func extractTextHandler(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scanner.Text(req.Text))
}

// receiptView is the output record plus the stored identifiers.
type receiptView struct {
	ID       uint      `json:"id"`
	UploadID uint      `json:"upload_id"`
	PSM      int       `json:"psm"`
	Conf     float64   `json:"confidence"`
	Created  time.Time `json:"created_at"`
	extract.Result
}

func viewOf(r models.Receipt) receiptView {
	return receiptView{ID: r.ID, UploadID: r.UploadID, PSM: r.PSM, Conf: r.Confidence, Created: r.CreatedAt, Result: r.Result()}
}

// uploadReceiptHandler stores an uploaded receipt image, scans it and
// persists the outcome. The same image uploaded twice by one user returns
// the first receipt.
func uploadReceiptHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > cfg.MaxUploadBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file too large (max %dMB)", cfg.MaxUploadMB)})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !ocr.SupportedExt(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type " + ext})
		return
	}
	fh, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	data, err := io.ReadAll(io.LimitReader(fh, cfg.MaxUploadBytes()+1))
	_ = fh.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if dup, err := store.FindDuplicate(db, user.ID, hash); err == nil && dup != nil && dup.Receipt != nil {
		c.JSON(http.StatusOK, viewOf(*dup.Receipt))
		return
	}

	relPath := filepath.ToSlash(filepath.Join(strconv.FormatUint(uint64(user.ID), 10), uuid.NewString()+ext))
	fullPath := filepath.Join(cfg.UploadBase, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.OCRTimeout)
	defer cancel()
	contentType := file.Header.Get("Content-Type")
	out := scanner.Bytes(ctx, data, contentType)

	up := models.Upload{UserID: user.ID, FileName: file.Filename, StorePath: relPath, ContentType: contentType, SHA256: hash}
	if err := store.SaveScan(db, &up, out); err != nil {
		log.Printf("ERROR persist upload %s: %v", relPath, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	if out.Failed() {
		log.Printf("WARN upload id=%d scan failed: %s", up.ID, out.Error)
		c.JSON(http.StatusUnprocessableEntity, out)
		return
	}
	log.Printf("NEW receipt id=%d upload=%d psm=%d conf=%.1f items=%d", up.Receipt.ID, up.ID, out.PSM, out.Confidence, len(out.Result.Items))
	c.JSON(http.StatusOK, viewOf(*up.Receipt))
}

// listReceiptsHandler returns receipts; admin sees all, a user only their own.
func listReceiptsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := store.ReceiptQuery{UserID: user.ID, All: user.IsAdmin(), Limit: 100}
	if month := c.Query("month"); month != "" {
		from, to, err := store.MonthRange(month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q.From, q.To, q.Limit = from, to, 0
	}
	receipts, err := store.ListReceipts(db, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	views := make([]receiptView, 0, len(receipts))
	for _, r := range receipts {
		views = append(views, viewOf(r))
	}
	c.JSON(http.StatusOK, views)
}

// getReceiptHandler returns a single receipt if admin or owner.
func getReceiptHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rec, err := store.GetReceipt(db, uint(id), user)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
	default:
		c.JSON(http.StatusOK, viewOf(rec))
	}
}

// exportReceiptsHandler downloads one month of receipts as XLSX.
func exportReceiptsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))
	from, to, err := store.MonthRange(month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	receipts, err := store.ListReceipts(db, store.ReceiptQuery{UserID: user.ID, All: user.IsAdmin(), From: from, To: to})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, month, receipts); err != nil {
		log.Printf("ERROR export %s: %v", month, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipts-%s.xlsx"`, month))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
