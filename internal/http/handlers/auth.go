package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pcelinjak/hivelog/internal/auth"
	"github.com/pcelinjak/hivelog/internal/domain/user"
)

type UserStore interface {
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserSummaryReader interface {
	Get(ctx context.Context, id int64) (user.Summary, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	users     UserStore
	summaries UserSummaryReader
	hasher    PasswordHasher
	tokens    TokenIssuer
	ids       IdentityResolver
	cookie    CookieConfig
}

func NewAuthHandler(users UserStore, summaries UserSummaryReader, hasher PasswordHasher, tokens TokenIssuer, ids IdentityResolver, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{
		users:     users,
		summaries: summaries,
		hasher:    hasher,
		tokens:    tokens,
		ids:       ids,
		cookie:    cookie,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role := user.RoleUser
	if req.Role != "" {
		role = user.Role(req.Role)
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	u, err := h.users.Create(cctx, user.NewUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    u.Summary(),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		RespondErr(ctx, err)
		return
	}

	if err != nil || !h.hasher.Verify(req.Password, found.PasswordHash) {
		RespondError(ctx, http.StatusUnauthorized, "auth_failed", "Email or password is incorrect", nil)
		return
	}

	token, err := h.tokens.Issue(auth.Identity{UserID: found.ID, Email: found.Email, Role: found.Role})
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	h.setSessionCookie(ctx, token, int(auth.TokenTTL.Seconds()))

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    found.Summary(),
	})
}

// Logout only clears the cookie. Issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.setSessionCookie(ctx, "", -1)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := caller(ctx, h.ids)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, storeTimeout)
	defer cancel()

	sum, err := h.summaries.Get(cctx, id.UserID)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": sum})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		h.cookie.Name,
		value,
		maxAge,
		"/",
		"",
		h.cookie.Secure,
		true, // HttpOnly.
	)
}
