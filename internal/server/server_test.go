package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jozzzzep/shrink/bitmask"
	"github.com/jozzzzep/shrink/internal/config"
	"github.com/jozzzzep/shrink/internal/store"
	"github.com/jozzzzep/shrink/internal/testutil/testlog"
	"github.com/jozzzzep/shrink/transport"
)

func newTestService(t *testing.T, limits config.LimitsConfig) *Service {
	t.Helper()
	testlog.Start(t)
	st := store.New(store.NewMemory(), "memory", transport.Base64{})
	svc := New(config.ServiceConfig{
		Name:   "store-test",
		Addr:   ":0",
		Limits: limits,
	}, st)
	svc.RegisterRoutes()
	return svc
}

func doJSON(t *testing.T, svc *Service, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	svc.HTTPRouter().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	rr := doJSON(t, svc, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d body=%s", rr.Code, rr.Body.String())
	}
	var body map[string]any
	decodeBody(t, rr, &body)
	if body["status"] != "ok" || body["backend"] != "memory" || body["adapter"] != "base64" {
		t.Fatalf("unexpected health body: %#v", body)
	}

	rr = doJSON(t, svc, http.MethodGet, "/ready", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("ready status = %d", rr.Code)
	}
}

func TestBitmaskEncodeDecodeRoutes(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	rr := doJSON(t, svc, http.MethodPost, "/v1/bitmask/encode", map[string]any{"ids": []uint32{1, 3, 5}})
	if rr.Code != http.StatusOK {
		t.Fatalf("encode status = %d body=%s", rr.Code, rr.Body.String())
	}
	var encoded struct {
		Buffer string `json:"buffer"`
		Format string `json:"format"`
		Bytes  int    `json:"bytes"`
	}
	decodeBody(t, rr, &encoded)
	if encoded.Format != "dense" {
		t.Fatalf("format = %q", encoded.Format)
	}
	want, err := bitmask.Encode([]uint32{1, 3, 5})
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	got, err := transport.DecodeBase64(encoded.Buffer)
	if err != nil {
		t.Fatalf("response buffer not base64: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("buffer = %x, want %x", got, want)
	}
	if encoded.Bytes != len(want) {
		t.Fatalf("bytes = %d, want %d", encoded.Bytes, len(want))
	}

	rr = doJSON(t, svc, http.MethodPost, "/v1/bitmask/decode", map[string]any{"buffer": encoded.Buffer})
	if rr.Code != http.StatusOK {
		t.Fatalf("decode status = %d body=%s", rr.Code, rr.Body.String())
	}
	var decoded struct {
		IDs   []uint32 `json:"ids"`
		Count int      `json:"count"`
	}
	decodeBody(t, rr, &decoded)
	if decoded.Count != 3 || len(decoded.IDs) != 3 || decoded.IDs[0] != 1 || decoded.IDs[1] != 3 || decoded.IDs[2] != 5 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestBitmaskSparseFormatRoute(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	rr := doJSON(t, svc, http.MethodPost, "/v1/bitmask/encode", map[string]any{
		"ids":    []uint32{4, 1 << 22},
		"format": "sparse",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("encode status = %d body=%s", rr.Code, rr.Body.String())
	}
	var encoded struct {
		Buffer string `json:"buffer"`
		Format string `json:"format"`
	}
	decodeBody(t, rr, &encoded)
	if encoded.Format != "sparse" {
		t.Fatalf("format = %q", encoded.Format)
	}

	rr = doJSON(t, svc, http.MethodPost, "/v1/bitmask/decode", map[string]any{
		"buffer": encoded.Buffer,
		"format": "sparse",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("decode status = %d body=%s", rr.Code, rr.Body.String())
	}
	var decoded struct {
		IDs []uint32 `json:"ids"`
	}
	decodeBody(t, rr, &decoded)
	if len(decoded.IDs) != 2 || decoded.IDs[0] != 4 || decoded.IDs[1] != 1<<22 {
		t.Fatalf("decoded = %+v", decoded.IDs)
	}
}

func TestBitmaskEncodeOversizedID(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{MaxMaskBits: 16})

	rr := doJSON(t, svc, http.MethodPost, "/v1/bitmask/encode", map[string]any{"ids": []uint32{99}})
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rr.Code)
	}
}

func TestBitmaskDecodeBadInputs(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	rr := doJSON(t, svc, http.MethodPost, "/v1/bitmask/decode", map[string]any{"buffer": "!!!"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid base64: status = %d", rr.Code)
	}

	// Two bytes cannot hold a length prefix.
	rr = doJSON(t, svc, http.MethodPost, "/v1/bitmask/decode", map[string]any{
		"buffer": transport.EncodeBase64([]byte{0x00, 0x01}),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("short buffer: status = %d", rr.Code)
	}

	rr = doJSON(t, svc, http.MethodPost, "/v1/bitmask/decode", map[string]any{
		"buffer": "AAAAAQA=",
		"format": "roaring64",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: status = %d", rr.Code)
	}
}

func TestShrinkRestoreBytesRoutes(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})
	payload := bytes.Repeat([]byte("edge payload "), 64)

	rr := doJSON(t, svc, http.MethodPost, "/v1/shrink/bytes", map[string]any{
		"payload": transport.EncodeBase64(payload),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("shrink status = %d body=%s", rr.Code, rr.Body.String())
	}
	var shrunk struct {
		Buffer        string `json:"buffer"`
		OriginalBytes int    `json:"original_bytes"`
		ShrunkBytes   int    `json:"shrunk_bytes"`
	}
	decodeBody(t, rr, &shrunk)
	if shrunk.OriginalBytes != len(payload) {
		t.Fatalf("original_bytes = %d, want %d", shrunk.OriginalBytes, len(payload))
	}
	if shrunk.ShrunkBytes >= shrunk.OriginalBytes {
		t.Fatalf("repetitive payload did not shrink: %d >= %d", shrunk.ShrunkBytes, shrunk.OriginalBytes)
	}

	rr = doJSON(t, svc, http.MethodPost, "/v1/restore/bytes", map[string]any{"buffer": shrunk.Buffer})
	if rr.Code != http.StatusOK {
		t.Fatalf("restore status = %d body=%s", rr.Code, rr.Body.String())
	}
	var restored struct {
		Payload string `json:"payload"`
	}
	decodeBody(t, rr, &restored)
	got, err := transport.DecodeBase64(restored.Payload)
	if err != nil {
		t.Fatalf("restored payload not base64: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestRestoreBytesRejectsGarbage(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	rr := doJSON(t, svc, http.MethodPost, "/v1/restore/bytes", map[string]any{
		"buffer": transport.EncodeBase64([]byte{0x00, 0x00, 0x00, 0x05, 0xde, 0xad, 0xbe, 0xef}),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestShrinkRestoreTextRoutes(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})
	text := "text payload for the wire"

	rr := doJSON(t, svc, http.MethodPost, "/v1/shrink/text", map[string]any{"text": text})
	if rr.Code != http.StatusOK {
		t.Fatalf("shrink status = %d body=%s", rr.Code, rr.Body.String())
	}
	var shrunk struct {
		Buffer string `json:"buffer"`
	}
	decodeBody(t, rr, &shrunk)

	rr = doJSON(t, svc, http.MethodPost, "/v1/restore/text", map[string]any{"buffer": shrunk.Buffer})
	if rr.Code != http.StatusOK {
		t.Fatalf("restore status = %d body=%s", rr.Code, rr.Body.String())
	}
	var restored struct {
		Text string `json:"text"`
	}
	decodeBody(t, rr, &restored)
	if restored.Text != text {
		t.Fatalf("text = %q, want %q", restored.Text, text)
	}
}

func TestShrinkRestoreJSONRoutes(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})
	document := `{"name":"edge","ids":[1,3,5]}`

	rr := doJSON(t, svc, http.MethodPost, "/v1/shrink/json", map[string]any{
		"document": json.RawMessage(document),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("shrink status = %d body=%s", rr.Code, rr.Body.String())
	}
	var shrunk struct {
		Buffer string `json:"buffer"`
	}
	decodeBody(t, rr, &shrunk)

	rr = doJSON(t, svc, http.MethodPost, "/v1/restore/json", map[string]any{"buffer": shrunk.Buffer})
	if rr.Code != http.StatusOK {
		t.Fatalf("restore status = %d body=%s", rr.Code, rr.Body.String())
	}
	var restored struct {
		Document json.RawMessage `json:"document"`
	}
	decodeBody(t, rr, &restored)
	if string(restored.Document) != document {
		t.Fatalf("document = %s, want %s", restored.Document, document)
	}
}

func TestShrinkJSONRejectsInvalidDocument(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/shrink/json", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	svc.HTTPRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing document: status = %d", rr.Code)
	}
}

func TestShrinkRestoreUintsRoutes(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	rr := doJSON(t, svc, http.MethodPost, "/v1/shrink/uints", map[string]any{"ids": []uint32{7, 0, 7, 300}})
	if rr.Code != http.StatusOK {
		t.Fatalf("shrink status = %d body=%s", rr.Code, rr.Body.String())
	}
	var shrunk struct {
		Buffer string `json:"buffer"`
	}
	decodeBody(t, rr, &shrunk)

	rr = doJSON(t, svc, http.MethodPost, "/v1/restore/uints", map[string]any{"buffer": shrunk.Buffer})
	if rr.Code != http.StatusOK {
		t.Fatalf("restore status = %d body=%s", rr.Code, rr.Body.String())
	}
	var restored struct {
		IDs   []uint32 `json:"ids"`
		Count int      `json:"count"`
	}
	decodeBody(t, rr, &restored)
	if restored.Count != 3 || len(restored.IDs) != 3 || restored.IDs[0] != 0 || restored.IDs[1] != 7 || restored.IDs[2] != 300 {
		t.Fatalf("restored = %+v", restored)
	}
}

func TestBufferRoutes(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})
	buf, err := bitmask.Encode([]uint32{8})
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	encoded := transport.EncodeBase64(buf)

	rr := doJSON(t, svc, http.MethodPut, "/v1/buffers/flags.v2", map[string]any{"buffer": encoded})
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, svc, http.MethodGet, "/v1/buffers/flags.v2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d body=%s", rr.Code, rr.Body.String())
	}
	var got struct {
		Key    string `json:"key"`
		Buffer string `json:"buffer"`
	}
	decodeBody(t, rr, &got)
	if got.Key != "flags.v2" || got.Buffer != encoded {
		t.Fatalf("get body = %+v", got)
	}

	rr = doJSON(t, svc, http.MethodGet, "/v1/buffers?prefix=flags.", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list struct {
		Keys  []string `json:"keys"`
		Count int      `json:"count"`
	}
	decodeBody(t, rr, &list)
	if list.Count != 1 || len(list.Keys) != 1 || list.Keys[0] != "flags.v2" {
		t.Fatalf("list body = %+v", list)
	}

	rr = doJSON(t, svc, http.MethodDelete, "/v1/buffers/flags.v2", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = doJSON(t, svc, http.MethodGet, "/v1/buffers/flags.v2", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want 404", rr.Code)
	}
}

func TestPutBufferInvalidKey(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	rr := doJSON(t, svc, http.MethodPut, "/v1/buffers/BADKEY", map[string]any{
		"buffer": "AAAAAQA=",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	svc := newTestService(t, config.LimitsConfig{})

	doJSON(t, svc, http.MethodGet, "/health", nil)
	rr := doJSON(t, svc, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("shrink_http_requests_total")) {
		t.Fatalf("metrics output missing http counter")
	}
}

func TestAttachUnderBasePath(t *testing.T) {
	st := store.New(store.NewMemory(), "memory", transport.Base64{})
	engine := gin.New()
	svc := Attach("embedded", engine, "/tools", st)
	svc.RegisterRoutes()

	req := httptest.NewRequest(http.MethodGet, "/tools/health", nil)
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
}
