package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/blob"
	"github.com/Nishanth-cyber/Job-search/internal/config"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/middleware"
	"github.com/Nishanth-cyber/Job-search/internal/model"
	"github.com/Nishanth-cyber/Job-search/internal/scorer"
	"github.com/Nishanth-cyber/Job-search/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	teardown, db, err := database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Port:           8080,
		AllowOrigin:    "http://localhost:3000",
		SecretKey:      auth.TestSecret,
		TokenTTL:       time.Hour,
		CookieName:     "jwt",
		RateLimit:      1000,
		MaxUploadBytes: 10 << 20,
		Scorer:         config.ScorerConfig{MaxAttempts: 1},
	}

	blacklist := auth.NewInMemoryBlacklistStore(time.Minute)
	t.Cleanup(func() { _ = blacklist.Close() })

	comp := Components{
		Blobs: blob.NewFileStore(testDB, nil, nil),
		Scorer: scorer.Func(func(context.Context, scorer.Request) (*scorer.Result, error) {
			return &scorer.Result{Score: 90}, nil
		}),
		Blacklist: blacklist,
		RateStore: middleware.NewRateLimitStore(cfg.RateLimit, nil),
		SkillTest: scorer.HeuristicSkillTest{},
	}

	handler, ok := NewMyServer(cfg, testDB, comp, zap.NewNop()).RegisterRoutes().(*gin.Engine)
	require.True(t, ok)
	return handler
}

func login(t *testing.T, r *gin.Engine, user model.User) string {
	t.Helper()
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"username": user.Username,
		"password": database.TestSeedPassword,
	}, "", r, "/api/v1/auth/login", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, ok := resp["access_token"].(string)
	require.True(t, ok)
	return token
}

func TestHealth(t *testing.T) {
	r := newTestServer(t)

	rec, resp := testutil.MakeJSONRequest(nil, "", r, "/health", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "up", resp["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRoutesRequireAuth(t *testing.T) {
	r := newTestServer(t)

	for _, path := range []string{
		"/api/v1/jobpost",
		"/api/v1/applications/me",
		fmt.Sprintf("/api/v1/jobpost/%d/applications", database.TestJobPost1.ID),
	} {
		rec, _ := testutil.MakeJSONRequest(nil, "", r, path, http.MethodGet)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRoutesRoleGuard(t *testing.T) {
	r := newTestServer(t)
	seeker := login(t, r, database.TestUserJobSeeker2)
	recruiter := login(t, r, database.TestUserRecruiter2)

	rec, _ := testutil.MakeJSONRequest(gin.H{"title": "x"}, seeker, r, "/api/v1/jobpost", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, recruiter, r, "/api/v1/applications/me", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": model.StatusHired}, seeker, r, "/api/v1/applications/1/status", http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitThroughRouter(t *testing.T) {
	r := newTestServer(t)
	seeker := login(t, r, database.TestUserJobSeeker1)

	rec, resp := testutil.MakeMultipartRequest(map[string]string{
		"job_id": fmt.Sprint(database.TestJobPost2.ID),
	}, nil, seeker, r, "/api/v1/applications", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.StatusReadyForTest, resp["status"])

	rec, _ = testutil.MakeJSONRequest(nil, seeker, r, "/api/v1/applications/me", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), database.TestJobPost2.Title)
}

func TestLogoutRevokeToken(t *testing.T) {
	r := newTestServer(t)
	token := login(t, r, database.TestUserRecruiter1)

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobpost", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/auth/logout", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobpost", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewScorer(t *testing.T) {
	ctx := context.Background()

	sc, err := NewScorer(ctx, config.ScorerConfig{
		Provider:       config.ProviderWebhook,
		URL:            "http://scorer.test/webhook",
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
		MaxAttempts:    2,
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, sc)

	_, err = NewScorer(ctx, config.ScorerConfig{Provider: config.ProviderWebhook}, nil)
	assert.Error(t, err)

	_, err = NewScorer(ctx, config.ScorerConfig{Provider: "fax"}, nil)
	assert.ErrorContains(t, err, "fax")
}

func TestBuildComponents_LocalDefaults(t *testing.T) {
	cfg := &config.Config{
		RateLimit: 10,
		Scorer: config.ScorerConfig{
			Provider:    config.ProviderWebhook,
			URL:         "http://scorer.test/webhook",
			MaxAttempts: 1,
		},
	}

	comp, cleanup, err := BuildComponents(context.Background(), cfg, testDB, nil)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.IsType(t, &blob.FileStore{}, comp.Blobs)
	assert.IsType(t, &auth.InMemoryBlacklistStore{}, comp.Blacklist)
	assert.NotNil(t, comp.RateStore)
	assert.NotNil(t, comp.Scorer)
	assert.IsType(t, scorer.HeuristicSkillTest{}, comp.SkillTest)
}

func TestNewSkillTest(t *testing.T) {
	ctx := context.Background()

	tests, err := NewSkillTest(ctx, config.ScorerConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, scorer.HeuristicSkillTest{}, tests)

	tests, err = NewSkillTest(ctx, config.ScorerConfig{Gemini: config.GeminiConfig{APIKey: "key"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &scorer.GeminiSkillTest{}, tests)
}

func TestSkillTestThroughRouter(t *testing.T) {
	r := newTestServer(t)
	seeker := login(t, r, database.TestUserJobSeeker2)
	recruiter := login(t, r, database.TestUserRecruiter1)
	questionsPath := fmt.Sprintf("/api/v1/jobpost/%d/test-questions", database.TestJobPost1.ID)
	evaluatePath := fmt.Sprintf("/api/v1/jobpost/%d/evaluate-answers", database.TestJobPost1.ID)

	rec, resp := testutil.MakeJSONRequest(nil, seeker, r, questionsPath, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	questions, ok := resp["questions"].([]any)
	require.True(t, ok)
	assert.Len(t, questions, scorer.QuestionCount)

	rec, _ = testutil.MakeJSONRequest(gin.H{"answers": []string{"x"}}, recruiter, r, evaluatePath, http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"answers": []string{"I use go daily"}}, seeker, r, evaluatePath, http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 8, resp["score"])
}
