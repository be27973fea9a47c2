package jobpost

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/middleware"
	"github.com/Nishanth-cyber/Job-search/internal/model"
	"github.com/Nishanth-cyber/Job-search/internal/scorer"
	"github.com/Nishanth-cyber/Job-search/internal/testutil"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
	os.Exit(code)
}

func newRouter() *gin.Engine {
	jc := NewJobPostController(testDB, scorer.HeuristicSkillTest{}, nil)
	r := gin.New()
	authed := r.Group("/jobpost", middleware.RequireAuth(auth.TestResolver(testDB), ""))
	authed.GET("", jc.GetPosts)
	authed.GET("/:id", jc.GetPostByID)
	authed.POST("", middleware.CheckRole(model.RoleRecruiter), jc.CreateJobPostHandler)
	authed.PATCH("/:id/deactivate", middleware.CheckRole(model.RoleRecruiter, model.RoleAdmin), jc.DeactivateJobPost)
	authed.GET("/:id/test-questions", jc.TestQuestionsHandler)
	authed.POST("/:id/evaluate-answers", middleware.CheckRole(model.RoleJobSeeker), jc.EvaluateAnswersHandler)
	return r
}

func token(t *testing.T, user model.User) string {
	t.Helper()
	tok, err := auth.GetAccessToken(t, testDB, user.Username, database.TestSeedPassword)
	require.NoError(t, err)
	return tok
}

func TestGetPostByID(t *testing.T) {
	r := newRouter()
	userToken := token(t, database.TestUserJobSeeker1)

	rec, resp := testutil.MakeJSONRequest(nil, userToken, r, fmt.Sprintf("/jobpost/%d", database.TestJobPost1.ID), http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(database.TestJobPost1.ID), resp["id"])
	assert.Equal(t, database.TestJobPost1.Title, resp["title"])
	assert.Equal(t, float64(70), resp["min_external_score_for_test"])

	rec, _ = testutil.MakeJSONRequest(nil, userToken, r, "/jobpost/99999", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, userToken, r, "/jobpost/abc", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPosts_OnlyActive(t *testing.T) {
	r := newRouter()
	userToken := token(t, database.TestUserJobSeeker1)

	rec, _ := testutil.MakeJSONRequest(nil, userToken, r, "/jobpost", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, database.TestJobPost1.Title)
	assert.NotContains(t, body, database.TestJobPost3.Title)

	rec, _ = testutil.MakeJSONRequest(nil, userToken, r, "/jobpost?skill=GO", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), database.TestJobPost1.Title)
	assert.NotContains(t, rec.Body.String(), database.TestJobPost2.Title)
}

func TestCreateJobPostHandler(t *testing.T) {
	r := newRouter()
	recruiter := token(t, database.TestUserRecruiter1)
	seeker := token(t, database.TestUserJobSeeker1)

	body := gin.H{
		"title":                       "SRE",
		"desc":                        "Keep things up",
		"required_skills":             []string{"linux"},
		"min_external_score_for_test": 60,
	}
	rec, resp := testutil.MakeJSONRequest(body, recruiter, r, "/jobpost", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "SRE", resp["title"])
	assert.Equal(t, "TechNova", resp["company_name"])
	assert.Equal(t, database.TestUserRecruiter1.ID.String(), resp["recruiter_id"])
	assert.Equal(t, true, resp["active"])

	rec, _ = testutil.MakeJSONRequest(body, seeker, r, "/jobpost", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	cases := map[string]gin.H{
		"unknown field":       {"title": "x", "salary_max": 10},
		"missing title":       {"desc": "no title"},
		"threshold too large": {"title": "x", "min_test_score": 101},
		"negative threshold":  {"title": "x", "min_external_score_for_test": -1},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _ := testutil.MakeJSONRequest(b, recruiter, r, "/jobpost", http.MethodPost)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestDeactivateJobPost(t *testing.T) {
	r := newRouter()
	owner := token(t, database.TestUserRecruiter1)
	stranger := token(t, database.TestUserRecruiter2)

	rec, resp := testutil.MakeJSONRequest(gin.H{"title": "Temp role"}, owner, r, "/jobpost", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code)
	path := fmt.Sprintf("/jobpost/%d/deactivate", uint(resp["id"].(float64)))

	rec, _ = testutil.MakeJSONRequest(nil, stranger, r, path, http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(nil, owner, r, path, http.MethodPatch)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["active"])

	rec, _ = testutil.MakeJSONRequest(nil, owner, r, "/jobpost", http.MethodGet)
	assert.NotContains(t, rec.Body.String(), "Temp role")
}

func TestTestQuestionsHandler(t *testing.T) {
	r := newRouter()
	userToken := token(t, database.TestUserJobSeeker1)

	rec, resp := testutil.MakeJSONRequest(nil, userToken, r, fmt.Sprintf("/jobpost/%d/test-questions", database.TestJobPost1.ID), http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(database.TestJobPost1.ID), resp["job_id"])
	questions, ok := resp["questions"].([]any)
	require.True(t, ok)
	require.Len(t, questions, scorer.QuestionCount)
	assert.Equal(t, "Explain your experience with go.", questions[0])

	rec, _ = testutil.MakeJSONRequest(nil, userToken, r, fmt.Sprintf("/jobpost/%d/test-questions", database.TestJobPost3.ID), http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, userToken, r, "/jobpost/99999/test-questions", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluateAnswersHandler(t *testing.T) {
	r := newRouter()
	seeker := token(t, database.TestUserJobSeeker1)
	path := fmt.Sprintf("/jobpost/%d/evaluate-answers", database.TestJobPost1.ID)

	t.Run("score returned", func(t *testing.T) {
		answers := []string{
			"I have built REST services in go for four years in production.",
			"Mostly sql",
		}
		rec, resp := testutil.MakeJSONRequest(gin.H{"answers": answers}, seeker, r, path, http.MethodPost)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, float64(scorer.HeuristicScore(database.TestJobPost1.RequiredSkills, answers)), resp["score"])
	})

	t.Run("recruiter rejected", func(t *testing.T) {
		rec, _ := testutil.MakeJSONRequest(gin.H{"answers": []string{"x"}}, token(t, database.TestUserRecruiter1), r, path, http.MethodPost)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("closed job", func(t *testing.T) {
		closed := fmt.Sprintf("/jobpost/%d/evaluate-answers", database.TestJobPost3.ID)
		rec, _ := testutil.MakeJSONRequest(gin.H{"answers": []string{"x"}}, seeker, r, closed, http.MethodPost)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	bad := map[string]gin.H{
		"missing answers": {},
		"no answers":      {"answers": []string{}},
		"too many":        {"answers": []string{"a", "b", "c", "d", "e", "f"}},
		"answer too long": {"answers": []string{strings.Repeat("a", 2001)}},
	}
	for name, body := range bad {
		t.Run(name, func(t *testing.T) {
			rec, _ := testutil.MakeJSONRequest(body, seeker, r, path, http.MethodPost)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}
