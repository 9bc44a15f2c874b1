package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// UserIDFromTokenMiddleware extracts user ID from JWT token and stores it in context
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// GetClaims returns the verified access token claims for the current request.
func GetClaims(ctx iris.Context) *AccessToken {
	return jwt.Get(ctx).(*AccessToken)
}

// FarmerOnlyMiddleware ensures the requester has the farmer role
func FarmerOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != "farmer" {
		CreateForbidden(ctx)
		return
	}
	ctx.Next()
}

// ExpertOnlyMiddleware ensures the requester has the expert role
func ExpertOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != "expert" {
		CreateForbidden(ctx)
		return
	}
	ctx.Next()
}
