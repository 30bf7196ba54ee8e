package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/auth"
)

const (
	ctxRequestID = "rid"
	ctxPrincipal = "principal"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := c.Get(ctxRequestID)
		entry := log.WithFields(logrus.Fields{
			"rid":    rid,
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"dur":    time.Since(start).String(),
		})
		switch {
		case len(c.Errors) > 0 && c.Writer.Status() >= http.StatusInternalServerError:
			entry.WithField("error", c.Errors.String()).Error("[http] request failed")
		case len(c.Errors) > 0:
			entry.WithField("error", c.Errors.String()).Warn("[http] request rejected")
		default:
			entry.Info("[http]")
		}
	}
}

func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		rid, _ := c.Get(ctxRequestID)
		log.WithFields(logrus.Fields{"rid": rid, "panic": rec}).Error("[http] panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{Message: "internal error"})
	})
}

func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// Verifier turns a bearer token into a principal.
type Verifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Authenticate requires a valid bearer token when enabled; otherwise it is a pass-through.
func Authenticate(v Verifier, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			Fail(c, apperr.Unauthorized("missing or invalid token"))
			c.Abort()
			return
		}
		p, err := v.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			Fail(c, apperr.Unauthorized("invalid token"))
			c.Abort()
			return
		}
		c.Set(ctxPrincipal, p)
		c.Next()
	}
}

// AuthenticateWS guards websocket upgrades, which browsers cannot send with
// custom headers: the token may come as ?token= or as a bearer header.
// Anyone but an owner may only subscribe to their own shop.
func AuthenticateWS(v Verifier, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		raw := c.Query("token")
		if raw == "" {
			raw = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if raw == "" {
			Fail(c, apperr.Unauthorized("missing token"))
			c.Abort()
			return
		}
		p, err := v.Verify(raw)
		if err != nil {
			Fail(c, apperr.Unauthorized("invalid token"))
			c.Abort()
			return
		}
		if p.Role != auth.RoleOwner && !sameID(p.ShopID, c.Query("shop_id")) {
			Fail(c, apperr.Forbidden("not a member of this shop"))
			c.Abort()
			return
		}
		c.Set(ctxPrincipal, p)
		c.Next()
	}
}

func sameID(a, b string) bool {
	ua, err := uuid.Parse(a)
	if err != nil {
		return false
	}
	ub, err := uuid.Parse(b)
	return err == nil && ua == ub
}

// Require enforces perm for authenticated requests. Without a principal
// (auth disabled) the request passes.
func Require(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if ok && !p.Can(perm) {
			Fail(c, apperr.Forbidden("missing permission "+perm))
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// ActorID is the employee id of the caller, or "" when unauthenticated.
func ActorID(c *gin.Context) string {
	p, _ := CurrentPrincipal(c)
	return p.EmployeeID
}
