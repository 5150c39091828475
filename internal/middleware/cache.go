package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/salon-booking/internal/config"
)

// ResponseCache stores whole 200 responses of the catalog endpoints in
// Redis.  The catalog only changes through the database, so entries
// simply expire after cfg.TTL.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns a cache; a nil client or a disabled config
// makes Middleware a passthrough.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

// Middleware serves hits straight from Redis and records misses.  The
// X-Cache header tells which one happened.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.cfg.Enabled || rc.rdb == nil {
		return passthrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.cfg.Methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.key(c)
			if raw, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if e, ok := decodeEntry(raw); ok {
					return e.replay(c)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(rc.cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated() {
				return nil
			}
			e := entry{Status: cw.status, Header: c.Response().Header().Clone(), Body: cw.buf.Bytes()}
			if raw, err := e.encode(); err == nil {
				_ = rc.rdb.Set(context.WithoutCancel(ctx), key, raw, rc.cfg.TTL).Err()
			}
			return nil
		}
	}
}

func (rc *ResponseCache) key(c echo.Context) string {
	r := c.Request()
	var tail string
	switch strings.ToLower(rc.cfg.KeyStrategy) {
	case "route":
		tail = c.Path()
	case "method_route":
		tail = r.Method + " " + c.Path()
	case "method_route_query":
		tail = r.Method + " " + c.Path() + "?" + r.URL.RawQuery
	default:
		tail = c.Path() + "?" + r.URL.RawQuery
	}
	return fmt.Sprintf("%s:%x", rc.cfg.Prefix, sha1.Sum([]byte(tail)))
}

// captureWriter tees the response body into buf, up to limit bytes.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.size += int64(len(b))
	if !cw.truncated() {
		cw.buf.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// entry is a stored response: [4 bytes status][4 bytes header length]
// [header JSON][body].
type entry struct {
	Status int
	Header http.Header
	Body   []byte
}

func (e entry) encode() ([]byte, error) {
	hdr, err := json.Marshal(e.Header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(e.Body))
	binary.BigEndian.PutUint32(out[0:4], uint32(e.Status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, e.Body...), nil
}

func decodeEntry(raw []byte) (entry, bool) {
	if len(raw) < 8 {
		return entry{}, false
	}
	n := int(binary.BigEndian.Uint32(raw[4:8]))
	if 8+n > len(raw) {
		return entry{}, false
	}
	e := entry{Status: int(binary.BigEndian.Uint32(raw[0:4])), Header: http.Header{}, Body: raw[8+n:]}
	if n > 0 {
		if err := json.Unmarshal(raw[8:8+n], &e.Header); err != nil {
			return entry{}, false
		}
	}
	return e, true
}

func (e entry) replay(c echo.Context) error {
	h := c.Response().Header()
	for k, vals := range e.Header {
		if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, "X-Cache") {
			continue
		}
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	return c.Blob(e.Status, e.Header.Get(echo.HeaderContentType), e.Body)
}
