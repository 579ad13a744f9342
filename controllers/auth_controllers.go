package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resto-pos/models"
	"resto-pos/utils"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// Login checks credentials and issues a token carrying the user's role
// name and admin flag.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	err := ac.DB.Preload("Role").Where("username = ?", req.Username).First(&user).Error
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid username or password"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role.Name, user.Role.IsAdmin)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("User %s logged in (role=%s)", user.Username, user.Role.Name)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// RegisterStaff -> create a staff account with an existing role (admin).
func (ac *AuthController) RegisterStaff(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var role models.Role
	if err := ac.DB.Where("name = ?", req.Role).First(&role).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("role not found"))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Username: req.Username,
		Password: hash,
		RoleID:   role.ID,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}
	user.Role = role

	utils.InfoLogger.Printf("Staff %s registered with role %s", user.Username, role.Name)
	utils.RespondJSON(c, http.StatusCreated, "Staff registered", user)
}
