package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"filevault-manager/config"
	"filevault-manager/database"
	"filevault-manager/middleware"
	"filevault-manager/models"
)

// sessionTTL 会话有效期
const sessionTTL = 24 * time.Hour

// RegisterPage 注册页
func RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", nil)
}

// Register 用户注册
func Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if username == "" || password == "" {
		setFlash(c, "Username and password required", "danger")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		render(c, http.StatusOK, "register.html", gin.H{
			"Flash": &FlashMessage{Message: "Registration failed.", Category: "warning"},
		})
		return
	}

	user := models.User{Username: username, Password: string(hashed)}
	if err := database.DB.Create(&user).Error; err != nil {
		// 用户名冲突与其它存储错误统一按通用警告处理，不区分原因
		render(c, http.StatusOK, "register.html", gin.H{
			"Flash": &FlashMessage{Message: "Username already taken or DB error.", Category: "warning"},
		})
		return
	}

	setFlash(c, "Registration successful. Please login.", "success")
	c.Redirect(http.StatusFound, "/")
}

// LoginPage 登录页
func LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", nil)
}

// Login 用户登录
func Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user models.User
	err := database.DB.Where("username = ?", username).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		if err != nil && err != gorm.ErrRecordNotFound {
			render(c, http.StatusOK, "login.html", gin.H{
				"Flash": &FlashMessage{Message: "Database error", Category: "danger"},
			})
			return
		}
		render(c, http.StatusOK, "login.html", gin.H{
			"Flash": &FlashMessage{Message: "Invalid credentials", Category: "danger"},
		})
		return
	}

	tokenString, err := issueToken(jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
	})
	if err != nil {
		render(c, http.StatusOK, "login.html", gin.H{
			"Flash": &FlashMessage{Message: "Failed to create session", Category: "danger"},
		})
		return
	}

	c.SetCookie(middleware.SessionCookie, tokenString,
		int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/index")
}

// Logout 退出登录，同时清除用户与管理员会话
func Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(middleware.AdminCookie, "", -1, "/", "", false, true)
	setFlash(c, "Logged out", "info")
	c.Redirect(http.StatusFound, "/")
}

// issueToken 签发会话 JWT
func issueToken(claims jwt.MapClaims) (string, error) {
	claims["exp"] = time.Now().Add(sessionTTL).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetConfig().SecretKey))
}
