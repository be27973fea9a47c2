package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/model"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

const minPasswordLength = 8

// LocalAuthHandler holds DB reference for handler methods.
type LocalAuthHandler struct {
	DB         *database.DBinstanceStruct
	Tokens     *TokenManager
	CookieName string
	log        *zap.Logger
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct, tokens *TokenManager, cookieName string, log *zap.Logger) *LocalAuthHandler {
	return &LocalAuthHandler{
		DB:         db,
		Tokens:     tokens,
		CookieName: cookieName,
		log:        logger.OrNop(log),
	}
}

type registerInfo struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=jobseeker recruiter"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	CompanyName string `json:"company_name"`
}

type loginInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LocalRegisterHandler handles local registration by receiving username and password
// @Summary Handles local registration by receiving username and password
// @Description Username must not already exist and password must longer or equal to 8 characters long
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body registerInfo true "role can be only 'jobseeker' or 'recruiter'"
// @Success 201 {object} model.UserResponse "Register success"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 409 {object} utilities.ErrorResponse "Username already exist"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /auth/register [post]
func (lh *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info registerInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.RespondError(c, apperror.Validation("Username, password, and Role (Only 'jobseeker' or 'recruiter') must be provided"))
		return
	}

	if len(info.Password) < minPasswordLength {
		utilities.RespondError(c, apperror.Validation("Password should longer or equal to 8 characters"))
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		utilities.RespondError(c, apperror.Internal("Failed hash password", err))
		return
	}

	user := model.User{
		Username:  info.Username,
		Password:  hashedPassword,
		Role:      info.Role,
		FirstName: strings.TrimSpace(info.FirstName),
		LastName:  strings.TrimSpace(info.LastName),
	}
	if email := strings.TrimSpace(info.Email); email != "" {
		user.Email = &email
	}
	if info.Role == model.RoleRecruiter {
		user.CompanyName = strings.TrimSpace(info.CompanyName)
	}

	if err := lh.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			logAuthAttempt(lh.log, zapcore.WarnLevel, authTypeLocal, statusFail, info.Username, "register rejected, username taken")
			utilities.RespondError(c, apperror.Conflict("Username already exist"))
			return
		}
		utilities.RespondError(c, apperror.Internal("Failed to create user", err))
		return
	}

	logAuthAttempt(lh.log, zapcore.InfoLevel, authTypeLocal, statusSuccess, info.Username, "user registered")
	lh.respondWithToken(c, http.StatusCreated, user)
}

// LocalLoginHandler handles local login by receiving username and password
// @Summary Handles local login by receiving username and password
// @Description Username must exist and password match
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials for login"
// @Success 200 {object} model.UserResponse "Login success"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 401 {object} utilities.ErrorResponse "Username not exist or password incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		utilities.RespondError(c, apperror.Validation("Username or password is not provided"))
		return
	}

	var user model.User
	err := lh.DB.WithContext(c.Request.Context()).Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		logAuthAttempt(lh.log, zapcore.WarnLevel, authTypeLocal, statusFail, info.Username, "unknown username")
		utilities.RespondError(c, apperror.Unauthorized("Username or password is incorrect"))
		return

	case err == nil:
		// Do nothing

	default:
		utilities.RespondError(c, apperror.Internal("Database error", err))
		return
	}

	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		logAuthAttempt(lh.log, zapcore.WarnLevel, authTypeLocal, statusFail, info.Username, "wrong password")
		utilities.RespondError(c, apperror.Unauthorized("Username or password is incorrect"))
		return
	}

	logAuthAttempt(lh.log, zapcore.InfoLevel, authTypeLocal, statusSuccess, info.Username, "user logged in")
	lh.respondWithToken(c, http.StatusOK, user)
}

func (lh *LocalAuthHandler) respondWithToken(c *gin.Context, status int, user model.User) {
	accessToken, err := lh.Tokens.GenerateToken(user.ID)
	if err != nil {
		utilities.RespondError(c, apperror.Internal("Failed to generate access token", err))
		return
	}

	if lh.CookieName != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(lh.CookieName, accessToken, int(lh.Tokens.TTL().Seconds()), "/", "", false, true)
	}

	c.JSON(status, model.UserResponse{
		User:        user,
		AccessToken: accessToken,
	})
}
