package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"filevault-manager/config"
	"filevault-manager/database"
	"filevault-manager/handlers"
	"filevault-manager/middleware"
	"filevault-manager/services"
	"filevault-manager/web"
)

func main() {
	// 加载 .env（不存在时沿用进程环境变量）
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.GetConfig()

	// 初始化数据库
	database.InitDB()

	// 确保上传目录存在
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// 签名扫描器
	carver := services.NewFileCarver(cfg.RecoveryDir)

	// 可选的 S3 blob 镜像
	var mirror *services.BlobMirror
	storageCfg := config.LoadStorageConfig()
	if storageCfg.IsS3Enabled() {
		var err error
		mirror, err = services.NewBlobMirror(storageCfg)
		if err != nil {
			log.Printf("S3 blob mirror disabled: %v", err)
			mirror = nil
		}
	}
	handlers.InitRecoveryHandlers(carver, mirror)

	// 创建 Gin 路由
	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(web.Templates())

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * 3600 * time.Second,
	}))

	// 公开路由
	r.GET("/register", handlers.RegisterPage)
	r.POST("/register", handlers.Register)
	r.GET("/", handlers.LoginPage)
	r.POST("/", handlers.Login)
	r.GET("/logout", handlers.Logout)
	r.GET("/admin/login", handlers.AdminLoginPage)
	r.POST("/admin/login", handlers.AdminLogin)

	// 需要用户会话的路由
	user := r.Group("/")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/index", handlers.Index)
		user.POST("/upload", handlers.Upload)
		user.POST("/delete/:id", handlers.Delete)
	}

	// 管理员路由
	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("", handlers.AdminDashboard)
		admin.GET("/ufiles", handlers.AdminFiles)
		admin.GET("/users", handlers.AdminUsers)
		admin.POST("/recover/:id", handlers.AdminRecover)
	}
	r.GET("/deleterecover", middleware.AdminRequired(), handlers.DeleteRecover)

	// 启动服务器
	port := cfg.ServerPort
	log.Printf("Server starting on port %s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
