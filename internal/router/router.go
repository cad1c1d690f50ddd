package router

import (
	"github.com/gin-gonic/gin"

	"smartledger/internal/handler"
	"smartledger/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. Routes are
// flat with no version prefix, matching the wire surface existing clients use.
func Setup(
	authH *handler.AuthHandler,
	billH *handler.BillHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/ping", healthH.Ping)
	r.GET("/readyz", healthH.Ready)

	// Auth
	r.POST("/register", authH.Register)
	r.POST("/login", authH.Login)
	r.GET("/verify_token", authH.VerifyToken)

	// Bills
	r.POST("/manual_bill", billH.ManualBill)
	r.POST("/upload_qwen_vl", billH.UploadQwenVL)
	r.POST("/upload_baidu_qwen", billH.UploadBaiduQwen)
	r.POST("/upload_llm", billH.UploadLLM)
	r.POST("/delete_bill", billH.DeleteBill)

	// Unknown paths get a bare status and no body to discourage probing.
	r.NoRoute(func(c *gin.Context) {
		c.Status(444)
	})

	return r
}
