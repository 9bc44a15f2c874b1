package utils

import (
	"github.com/kataras/iris/v12"
)

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

func CreateNotFound(ctx iris.Context) {
	JSONError(ctx, iris.StatusNotFound, "not_found", "resource not found")
}

func CreateForbidden(ctx iris.Context) {
	JSONError(ctx, iris.StatusForbidden, "forbidden", "you are not allowed to perform this action")
}

func CreateInternalServerError(ctx iris.Context) {
	JSONError(ctx, iris.StatusInternalServerError, "internal_error", "an internal server error occurred")
}

// HandleValidationErrors maps ReadJSON/validator failures to a 400 response.
func HandleValidationErrors(err error, ctx iris.Context) {
	JSONError(ctx, iris.StatusBadRequest, "invalid_argument", err.Error())
}
