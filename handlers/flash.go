package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "flash"

// FlashMessage 一次性提示消息，渲染后即清除
type FlashMessage struct {
	Message  string
	Category string
}

// setFlash 写入提示消息，在下一次页面渲染时显示
func setFlash(c *gin.Context, message, category string) {
	c.SetCookie(flashCookie, category+"|"+message, 60, "/", "", false, true)
}

// popFlash 读取并清除提示消息
func popFlash(c *gin.Context) *FlashMessage {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	parts := strings.SplitN(raw, "|", 2)
	if len(parts) != 2 {
		return &FlashMessage{Message: raw, Category: "info"}
	}
	return &FlashMessage{Message: parts[1], Category: parts[0]}
}

// render 渲染模板。data 未携带 Flash 时取 cookie 中的消息
func render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = popFlash(c)
	}
	c.HTML(code, name, data)
}
