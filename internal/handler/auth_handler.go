package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/workoutlog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionUserIDKey = "user_id"
	contextUserIDKey = "__current_user_id"
)

type signupPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup 注册新用户并建立会话
func (a *API) Signup(c *gin.Context) {
	var payload signupPayload
	if !bindJSON(c, &payload, "invalid signup payload") {
		return
	}

	email := strings.TrimSpace(strings.ToLower(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondError(c, http.StatusBadRequest, "a valid email is required")
		return
	}

	if len(payload.Password) < 6 {
		respondError(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	var existing db.User
	err := a.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		respondError(c, http.StatusBadRequest, "email is already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, "failed to check existing user")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := db.User{
		Email:    email,
		Name:     strings.TrimSpace(payload.Name),
		Password: string(hashed),
	}
	if err := a.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	if !saveSessionUser(c, user.ID) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// Login 校验凭证并建立会话
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "invalid login payload") {
		return
	}

	email := strings.TrimSpace(strings.ToLower(payload.Email))

	var user db.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if !saveSessionUser(c, user.ID) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Me 返回当前登录用户
func (a *API) Me(c *gin.Context) {
	var user db.User
	if err := a.db.First(&user, currentUserID(c)).Error; err != nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// AuthRequired 校验会话身份，并把用户 ID 写入请求上下文。
// 无身份时返回 401，由外层认证机制决定的 Unauthenticated 语义在此落地。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(sessionUserIDKey)

		userID, ok := raw.(uint)
		if !ok || userID == 0 {
			respondError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

func saveSessionUser(c *gin.Context, userID uint) bool {
	session := sessions.Default(c)
	session.Set(sessionUserIDKey, userID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return false
	}
	return true
}

func currentUserID(c *gin.Context) uint {
	if raw, exists := c.Get(contextUserIDKey); exists {
		if userID, ok := raw.(uint); ok {
			return userID
		}
	}
	return 0
}
