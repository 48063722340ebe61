package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vgp-compliance-api/internal/models"
	appErrors "github.com/noah-isme/vgp-compliance-api/pkg/errors"
)

type tokenValidatorStub struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (s *tokenValidatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

type auditWriterStub struct {
	logs []*models.AuditLog
}

func (s *auditWriterStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected/:id", handlers...)
	return r
}

func ok(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func serve(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected/sched-1", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresBearerToken(t *testing.T) {
	tokens := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}}
	r := newRouter(JWT(tokens), ok)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic abc").Code)

	w := serve(r, "Bearer good-token")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "good-token", tokens.seen)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	tokens := &tokenValidatorStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")}
	r := newRouter(JWT(tokens), ok)

	w := serve(r, "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		role models.UserRole
		code int
	}{
		{models.RoleAdmin, http.StatusNoContent},
		{models.RoleInspector, http.StatusNoContent},
		{models.RoleStaff, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			tokens := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: tc.role}}
			r := newRouter(JWT(tokens), RequireRoles(models.RoleAdmin, models.RoleInspector), ok)
			assert.Equal(t, tc.code, serve(r, "Bearer t").Code)
		})
	}

	r := newRouter(RequireRoles(models.RoleAdmin), ok)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
}

func TestAuditRecordsSuccessfulRequests(t *testing.T) {
	audit := &auditWriterStub{}
	tokens := &tokenValidatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleInspector}}
	r := newRouter(JWT(tokens), Audit(audit, models.AuditActionInspectionRecord, "vgp_schedule", "id"), ok)

	require.Equal(t, http.StatusNoContent, serve(r, "Bearer t").Code)
	require.Len(t, audit.logs, 1)
	entry := audit.logs[0]
	assert.Equal(t, models.AuditActionInspectionRecord, entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u1", *entry.UserID)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "sched-1", *entry.ResourceID)
}

func TestAuditSkipsFailedRequests(t *testing.T) {
	audit := &auditWriterStub{}
	r := newRouter(Audit(audit, models.AuditActionInspectionRecord, "vgp_schedule", "id"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	serve(r, "")
	assert.Empty(t, audit.logs)
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("  bearer abc.def  ")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Token abc"} {
		_, err := bearerToken(header)
		assert.ErrorIs(t, err, appErrors.ErrUnauthorized, "header %q", header)
	}
}

func TestCurrentUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentUser(c))

	claims := &models.JWTClaims{UserID: "u1"}
	c.Set(ContextUserKey, claims)
	assert.Same(t, claims, CurrentUser(c))
}
