package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filevault-manager/config"
	"filevault-manager/database"
	"filevault-manager/middleware"
	"filevault-manager/services"
	"filevault-manager/web"
)

// setupTest 构造与 main.go 相同路由的测试引擎，数据库使用独立内存库
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.GetConfig()
	cfg.UploadDir = t.TempDir()
	cfg.RecoveryDir = t.TempDir()
	cfg.SecretKey = "test-secret-key"
	cfg.AdminPassword = "admin123"

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}
	database.DB = db

	InitRecoveryHandlers(services.NewFileCarver(cfg.RecoveryDir, t.TempDir()), nil)

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())

	r.GET("/register", RegisterPage)
	r.POST("/register", Register)
	r.GET("/", LoginPage)
	r.POST("/", Login)
	r.GET("/logout", Logout)
	r.GET("/admin/login", AdminLoginPage)
	r.POST("/admin/login", AdminLogin)

	user := r.Group("/")
	user.Use(middleware.AuthMiddleware())
	{
		user.GET("/index", Index)
		user.POST("/upload", Upload)
		user.POST("/delete/:id", Delete)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("", AdminDashboard)
		admin.GET("/ufiles", AdminFiles)
		admin.GET("/users", AdminUsers)
		admin.POST("/recover/:id", AdminRecover)
	}
	r.GET("/deleterecover", middleware.AdminRequired(), DeleteRecover)

	return r
}

// postForm 提交表单并返回响应
func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// get 发起 GET 请求
func get(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// uploadFile 以 multipart 方式上传文件
func uploadFile(r *gin.Engine, filename string, content []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", filename)
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// findCookie 从响应中提取指定 cookie
func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}

// registerAndLogin 注册并登录用户，返回会话 cookie
func registerAndLogin(t *testing.T, r *gin.Engine, username, password string) *http.Cookie {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	if w := postForm(r, "/register", form); w.Code != http.StatusFound {
		t.Fatalf("注册失败, status = %d", w.Code)
	}

	w := postForm(r, "/", form)
	cookie := findCookie(w, middleware.SessionCookie)
	if cookie == nil {
		t.Fatalf("登录未返回会话 cookie, status = %d", w.Code)
	}
	return cookie
}

// adminLogin 管理员登录，返回管理员会话 cookie
func adminLogin(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()

	w := postForm(r, "/admin/login", url.Values{"password": {"admin123"}})
	cookie := findCookie(w, middleware.AdminCookie)
	if cookie == nil {
		t.Fatalf("管理员登录未返回会话 cookie, status = %d", w.Code)
	}
	return cookie
}
