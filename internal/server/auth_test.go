package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestValidateAPIKey(t *testing.T) {
	auth := NewAuthService("secret-key", "jwt-secret")

	assert.True(t, auth.ValidateAPIKey("secret-key"))
	assert.False(t, auth.ValidateAPIKey("wrong-key"))
	assert.False(t, auth.ValidateAPIKey(""))
}

func TestGenerateAndValidateToken(t *testing.T) {
	auth := NewAuthService("secret-key", "jwt-secret")

	token, err := auth.GenerateToken("admin", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "copilot-cli-server", claims.Issuer)
}

func TestValidateExpiredToken(t *testing.T) {
	auth := NewAuthService("secret-key", "jwt-secret")

	token, err := auth.GenerateToken("admin", -time.Hour)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	auth := NewAuthService("secret-key", "jwt-secret")
	other := NewAuthService("secret-key", "other-secret")

	token, err := auth.GenerateToken("admin", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(c *gin.Context)
		expect string
	}{
		{
			name: "bearer header",
			setup: func(c *gin.Context) {
				c.Request.Header.Set("Authorization", "Bearer abc")
			},
			expect: "abc",
		},
		{
			name: "raw authorization header",
			setup: func(c *gin.Context) {
				c.Request.Header.Set("Authorization", "abc")
			},
			expect: "abc",
		},
		{
			name: "x-api-key header",
			setup: func(c *gin.Context) {
				c.Request.Header.Set("X-API-Key", "abc")
			},
			expect: "abc",
		},
		{
			name:   "missing",
			setup:  func(c *gin.Context) {},
			expect: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/", nil)
			tc.setup(c)
			assert.Equal(t, tc.expect, ExtractToken(c))
		})
	}
}

func TestExtractTokenQueryParam(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?token=abc", nil)
	assert.Equal(t, "abc", ExtractToken(c))
}
