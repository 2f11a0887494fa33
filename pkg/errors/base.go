package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// OK 成功。
var OK = Register(New(0, http.StatusOK, codes.OK, "Success", "成功"))

// 通用错误。
var (
	ErrRouteNotFound = Register(New(MakeCode(ServiceCommon, CategoryResource, 4), http.StatusNotFound, codes.NotFound, "Route not found", "路由不存在"))
	ErrInternal      = Register(New(MakeCode(ServiceCommon, CategoryInternal, 0), http.StatusInternalServerError, codes.Internal, "Internal server error", "服务器内部错误"))
	ErrPanic         = Register(New(MakeCode(ServiceCommon, CategoryInternal, 2), http.StatusInternalServerError, codes.Internal, "Internal server error", "服务器内部错误"))
)
