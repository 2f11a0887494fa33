package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/infra/middleware/common"
)

// Writer provides convenient methods to write responses to a gin context.
type Writer struct {
	ctx      *gin.Context
	withTime bool
	lang     string
}

// NewWriter creates a new response writer for the given context.
func NewWriter(ctx *gin.Context) *Writer {
	return &Writer{ctx: ctx, lang: ctx.GetHeader("Accept-Language")}
}

// WithTimestamp enables automatic timestamp in responses.
func (w *Writer) WithTimestamp() *Writer {
	w.withTime = true
	return w
}

func (w *Writer) prepare(r *Response) *Response {
	if w.withTime {
		r.Timestamp = time.Now().UnixMilli()
	}
	r.RequestID = common.GetRequestID(w.ctx.Request.Context())
	return r
}

// OK sends a successful response with data.
func (w *Writer) OK(data interface{}) {
	resp := w.prepare(Success(data))
	w.ctx.JSON(resp.HTTPStatus(), resp)
}

// Fail sends an error response. Errors that do not wrap an Errno are
// reported as internal errors.
func (w *Writer) Fail(err error) {
	resp := w.prepare(ErrWithLang(errors.FromError(err), w.lang))
	w.ctx.JSON(resp.HTTPStatus(), resp)
}

// OK writes a successful response.
func OK(c *gin.Context, data interface{}) {
	NewWriter(c).OK(data)
}

// Fail writes an error response.
func Fail(c *gin.Context, err error) {
	NewWriter(c).Fail(err)
}
