package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/harentsoaR/lessons-api/internal/errs"
	"github.com/harentsoaR/lessons-api/internal/models"
	"github.com/harentsoaR/lessons-api/internal/store"
	"github.com/harentsoaR/lessons-api/internal/utils"
)

const msgInvalidCredentials = "Invalid credentials"

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup stores a new user with a bcrypt-hashed password. Email uniqueness
// is enforced by the store's unique index, so a duplicate is detected by
// the insert itself.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errs.NewValidationError("A valid email and a password are required"))
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password, h.opts.BcryptCost)
	if err != nil {
		_ = c.Error(err)
		return
	}

	coll, err := h.Store.Collection(h.opts.Users)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, err := coll.InsertOne(c.Request.Context(), models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashedPassword,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			_ = c.Error(errs.NewConflictError("An account with this email already exists"))
			return
		}
		_ = c.Error(err)
		return
	}

	h.Log.Info().Str("user_id", id.Hex()).Msg("user signed up")
	c.JSON(http.StatusOK, gin.H{
		"acknowledged": true,
		"insertedId":   id.Hex(),
	})
}

// Signin checks the credentials and returns the public user fields plus a
// token. Unknown email and wrong password produce the same response.
func (h *Handler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errs.NewValidationError("Email and password are required"))
		return
	}

	coll, err := h.Store.Collection(h.opts.Users)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var user models.User
	err = coll.FindOne(c.Request.Context(), bson.M{"email": req.Email}, &user)
	if errors.Is(err, store.ErrNoDocuments) {
		utils.CheckPasswordHash(req.Password, h.dummyHash)
		_ = c.Error(errs.NewAuthError(msgInvalidCredentials))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		_ = c.Error(errs.NewAuthError(msgInvalidCredentials))
		return
	}

	token, err := h.Tokens.GenerateJWT(user.ID.Hex(), user.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Signin successful",
		"user":    user.Public(),
		"token":   token,
	})
}
