package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	userService     services.UserService
	cookbookService services.CookbookService
	maxImageBytes   int64
}

func NewAuthController(userService services.UserService, cookbookService services.CookbookService, maxImageBytes int64) *AuthController {
	if maxImageBytes <= 0 {
		maxImageBytes = services.DefaultMaxImageBytes
	}
	return &AuthController{
		userService:     userService,
		cookbookService: cookbookService,
		maxImageBytes:   maxImageBytes,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create an account and receive its first bearer token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param user body services.RegisterInput true "Account details"
// @Success 201 {object} object{message=string,user=models.UserResponse,token=string,token_type=string}
// @Failure 400 {object} models.APIError
// @Failure 422 {object} models.APIError "Validation error"
// @Router /api/v1/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := bindInput(c, &req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := ac.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err, "User")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "User registered successfully",
		"user":       models.NewUserResponse(result.User),
		"token":      result.Token,
		"token_type": "Bearer",
	})
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a new bearer token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param credentials body services.LoginInput true "Credentials"
// @Success 200 {object} object{message=string,user=models.UserResponse,token=string,token_type=string}
// @Failure 401 {object} models.APIError "Invalid credentials"
// @Failure 422 {object} models.APIError "Validation error"
// @Router /api/v1/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginInput
	if err := bindInput(c, &req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	result, err := ac.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"user":       models.NewUserResponse(result.User),
		"token":      result.Token,
		"token_type": "Bearer",
	})
}

// Logout godoc
// @Summary Log out everywhere
// @Description Revoke every bearer token of the caller, not only the presented one
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.userService.Logout(c.Request.Context(), mustUserID(c)); err != nil {
		respondWithError(c, err, "User")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me godoc
// @Summary Current user
// @Description Get the caller's profile together with the recipes saved in their cookbook
// @Tags auth
// @Produce json
// @Success 200 {object} object{user=models.UserResponse,saved_recipes=[]models.RecipeSummary}
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/user [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondWithError(c, services.ErrUnauthenticated, "User")
		return
	}

	saved, err := ac.cookbookService.ListCookbook(c.Request.Context(), user.ID)
	if err != nil {
		respondWithError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          models.NewUserResponse(*user),
		"saved_recipes": saved,
	})
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Change only the supplied profile fields. Send multipart/form-data to upload a new profile picture.
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param first_name formData string false "First name"
// @Param last_name formData string false "Last name"
// @Param username formData string false "Username"
// @Param email formData string false "Email"
// @Param password formData string false "New password"
// @Param password_confirmation formData string false "New password again"
// @Param image formData file false "Profile picture (jpeg, png, gif)"
// @Success 200 {object} object{message=string,user=models.UserResponse}
// @Failure 401 {object} models.APIError
// @Failure 422 {object} models.APIError "Validation error"
// @Security BearerAuth
// @Router /api/v1/user/update [post]
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileInput
	if isForm(c) {
		if err := parseForm(c); err != nil {
			respondBadRequest(c, "Invalid request body")
			return
		}
		req = services.UpdateProfileInput{
			FirstName:            formString(c, "first_name"),
			LastName:             formString(c, "last_name"),
			Username:             formString(c, "username"),
			Email:                formString(c, "email"),
			Password:             formString(c, "password"),
			PasswordConfirmation: formString(c, "password_confirmation"),
		}
		image, err := formImage(c, "image", ac.maxImageBytes)
		if err != nil {
			if errors.Is(err, errMalformedBody) {
				respondBadRequest(c, "Invalid request body")
				return
			}
			respondWithError(c, err, "User")
			return
		}
		req.Image = image
	} else if err := decodeJSON(c, &req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	user, err := ac.userService.UpdateProfile(c.Request.Context(), mustUserID(c), req)
	if err != nil {
		respondWithError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    models.NewUserResponse(*user),
	})
}
