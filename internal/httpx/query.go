package httpx

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type PageQuery struct {
	Page  int
	Limit int
}

func (q PageQuery) Offset() int { return (q.Page - 1) * q.Limit }

// ParsePage reads ?page=&limit= with the usual clamping.
func ParsePage(c *gin.Context) PageQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	return NormalizePage(page, limit)
}

func NormalizePage(page, limit int) PageQuery {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageQuery{Page: page, Limit: limit}
}

// TimeRange is an optional [From, To) window.
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// ParseTimeRange reads ?from=&to= as RFC3339 or YYYY-MM-DD. A bare date in
// "to" is inclusive of that whole day.
func ParseTimeRange(c *gin.Context) (TimeRange, error) {
	var tr TimeRange
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, _, err := parseTime(s)
		if err != nil {
			return tr, apperr.BadRequest("invalid from: %q", s)
		}
		tr.From = &t
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, dateOnly, err := parseTime(s)
		if err != nil {
			return tr, apperr.BadRequest("invalid to: %q", s)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		tr.To = &t
	}
	if tr.From != nil && tr.To != nil && !tr.From.Before(*tr.To) {
		return tr, apperr.BadRequest("from must be before to")
	}
	return tr, nil
}

func parseTime(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", s)
	return t, true, err
}

// QueryBool parses ?name=true|1.
func QueryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

// CanonicalIDs checks ids before they reach a UUID column. Every path
// parameter is an id and a malformed one is a 404; query parameters ending in
// _id are filters and a malformed one is a 400. Valid ids are rewritten in
// canonical lowercase form.
func CanonicalIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		for i, p := range c.Params {
			id, err := uuid.Parse(p.Value)
			if err != nil {
				Fail(c, apperr.NotFound(p.Key+" "+strconv.Quote(p.Value)))
				c.Abort()
				return
			}
			c.Params[i].Value = id.String()
		}

		q := c.Request.URL.Query()
		rewrite := false
		for key, vals := range q {
			if !strings.HasSuffix(key, "_id") {
				continue
			}
			for i, v := range vals {
				if v == "" {
					continue
				}
				id, err := uuid.Parse(v)
				if err != nil {
					Fail(c, apperr.BadRequest("invalid %s: %q", key, v))
					c.Abort()
					return
				}
				vals[i] = id.String()
				rewrite = true
			}
		}
		if rewrite {
			c.Request.URL.RawQuery = q.Encode()
		}
		c.Next()
	}
}
