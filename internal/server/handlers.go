package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jozzzzep/shrink"
	"github.com/jozzzzep/shrink/bitmask"
	"github.com/jozzzzep/shrink/framing"
	"github.com/jozzzzep/shrink/internal/observability"
	"github.com/jozzzzep/shrink/internal/store"
	"github.com/jozzzzep/shrink/transport"
)

type idsRequest struct {
	IDs    []uint32 `json:"ids"`
	Format string   `json:"format"`
}

type bufferRequest struct {
	Buffer string `json:"buffer"`
	Format string `json:"format"`
}

type payloadRequest struct {
	Payload string `json:"payload"`
}

type textRequest struct {
	Text string `json:"text"`
}

type documentRequest struct {
	Document json.RawMessage `json:"document"`
}

func (s *Service) RegisterRoutes() {
	routes := s.routes()

	routes.GET("/health", func(c *gin.Context) {
		payload := gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Started).String(),
			"service": s.Name,
			"backend": s.store.BackendName(),
			"adapter": s.store.Adapter().Name(),
			"version": version,
		}
		if count, err := s.store.KeyCount(); err == nil {
			payload["buffers"] = count
		}
		c.JSON(http.StatusOK, payload)
	})

	routes.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.Started).String(),
			"service": s.Name,
			"version": version,
		})
	})

	routes.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := routes.Group("/v1")

	v1.POST("/bitmask/encode", s.handleBitmaskEncode)
	v1.POST("/bitmask/decode", s.handleBitmaskDecode)

	v1.POST("/shrink/bytes", s.handleShrinkBytes)
	v1.POST("/restore/bytes", s.handleRestoreBytes)
	v1.POST("/shrink/text", s.handleShrinkText)
	v1.POST("/restore/text", s.handleRestoreText)
	v1.POST("/shrink/json", s.handleShrinkJSON)
	v1.POST("/restore/json", s.handleRestoreJSON)
	v1.POST("/shrink/uints", s.handleShrinkUints)
	v1.POST("/restore/uints", s.handleRestoreUints)

	v1.GET("/buffers", s.handleListBuffers)
	v1.PUT("/buffers/:key", s.handlePutBuffer)
	v1.GET("/buffers/:key", s.handleGetBuffer)
	v1.DELETE("/buffers/:key", s.handleDeleteBuffer)
}

func (s *Service) handleBitmaskEncode(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		buf    []byte
		err    error
		format string
	)
	switch req.Format {
	case "", "dense":
		format = "dense"
		buf, err = bitmask.EncodeLimits(req.IDs, s.maskLimits)
	case "sparse":
		format = "sparse"
		buf, err = bitmask.EncodeSparse(req.IDs)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown format %q", req.Format)})
		return
	}
	observability.RecordCodecOp("bitmask_encode", len(buf), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"buffer": transport.EncodeBase64(buf),
		"format": format,
		"bytes":  len(buf),
	})
}

func (s *Service) handleBitmaskDecode(c *gin.Context) {
	var req bufferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buf, err := transport.DecodeBase64(req.Buffer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ids []uint32
	switch req.Format {
	case "", "dense":
		ids, err = bitmask.Decode(buf)
	case "sparse":
		ids, err = bitmask.DecodeSparse(buf)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown format %q", req.Format)})
		return
	}
	observability.RecordCodecOp("bitmask_decode", len(buf), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ids":   idsOrEmpty(ids),
		"count": len(ids),
	})
}

func (s *Service) handleShrinkBytes(c *gin.Context) {
	var req payloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, err := transport.DecodeBase64(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buf, err := shrink.Bytes(raw)
	observability.RecordCodecOp("shrink_bytes", len(raw), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"buffer":         transport.EncodeBase64(buf),
		"original_bytes": len(raw),
		"shrunk_bytes":   len(buf),
	})
}

func (s *Service) handleRestoreBytes(c *gin.Context) {
	buf, ok := bindBuffer(c)
	if !ok {
		return
	}
	raw, err := shrink.RestoreBytesLimits(buf, s.restoreLimits)
	observability.RecordCodecOp("restore_bytes", len(raw), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payload": transport.EncodeBase64(raw)})
}

func (s *Service) handleShrinkText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buf, err := shrink.String(req.Text)
	observability.RecordCodecOp("shrink_text", len(req.Text), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"buffer":         transport.EncodeBase64(buf),
		"original_bytes": len(req.Text),
		"shrunk_bytes":   len(buf),
	})
}

func (s *Service) handleRestoreText(c *gin.Context) {
	buf, ok := bindBuffer(c)
	if !ok {
		return
	}
	text, err := shrink.RestoreStringLimits(buf, s.restoreLimits)
	observability.RecordCodecOp("restore_text", len(text), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Service) handleShrinkJSON(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buf, err := shrink.JSON(req.Document)
	observability.RecordCodecOp("shrink_json", len(req.Document), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"buffer":         transport.EncodeBase64(buf),
		"original_bytes": len(req.Document),
		"shrunk_bytes":   len(buf),
	})
}

func (s *Service) handleRestoreJSON(c *gin.Context) {
	buf, ok := bindBuffer(c)
	if !ok {
		return
	}
	raw, err := shrink.RestoreJSONLimits(buf, s.restoreLimits)
	observability.RecordCodecOp("restore_json", len(raw), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": json.RawMessage(raw)})
}

func (s *Service) handleShrinkUints(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buf, err := shrink.Uints(req.IDs)
	observability.RecordCodecOp("shrink_uints", len(buf), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"buffer": transport.EncodeBase64(buf),
		"count":  len(req.IDs),
	})
}

func (s *Service) handleRestoreUints(c *gin.Context) {
	buf, ok := bindBuffer(c)
	if !ok {
		return
	}
	ids, err := shrink.RestoreUintsLimits(buf, s.restoreLimits)
	observability.RecordCodecOp("restore_uints", len(buf), err == nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ids":   idsOrEmpty(ids),
		"count": len(ids),
	})
}

func (s *Service) handlePutBuffer(c *gin.Context) {
	buf, ok := bindBuffer(c)
	if !ok {
		return
	}
	key := c.Param("key")
	if err := s.store.PutBuffer(key, buf); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "key": key, "bytes": len(buf)})
}

func (s *Service) handleGetBuffer(c *gin.Context) {
	key := c.Param("key")
	buf, err := s.store.GetBuffer(key)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "buffer": transport.EncodeBase64(buf)})
}

func (s *Service) handleDeleteBuffer(c *gin.Context) {
	key := c.Param("key")
	if err := s.store.DeleteBuffer(key); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "key": key})
}

func (s *Service) handleListBuffers(c *gin.Context) {
	keys, err := s.store.ListKeys(c.Query("prefix"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys, "count": len(keys)})
}

// bindBuffer reads a {"buffer": "<base64>"} body and decodes it.
func bindBuffer(c *gin.Context) ([]byte, bool) {
	var req bufferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	buf, err := transport.DecodeBase64(req.Buffer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return buf, true
}

func idsOrEmpty(ids []uint32) []uint32 {
	if ids == nil {
		return []uint32{}
	}
	return ids
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, bitmask.ErrIdentifierTooLarge),
		errors.Is(err, shrink.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrInvalidKey),
		errors.Is(err, framing.ErrInputTooShort),
		errors.Is(err, transport.ErrInvalidEncoding),
		errors.Is(err, bitmask.ErrCountMismatch),
		errors.Is(err, shrink.ErrLengthMismatch),
		errors.Is(err, shrink.ErrCorruptPayload),
		errors.Is(err, shrink.ErrInvalidJSON),
		errors.Is(err, shrink.ErrUnknownEncoding):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
