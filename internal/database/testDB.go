package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	m "github.com/Nishanth-cyber/Job-search/internal/model"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & job posts
var (
	TestAdminUser      m.User
	TestUserJobSeeker1 m.User
	TestUserJobSeeker2 m.User
	TestUserRecruiter1 m.User
	TestUserRecruiter2 m.User

	// Add exported plain password
	TestSeedPassword = "SeedPass123!"

	// TestJobPost1 require external score 70 and no test threshold
	TestJobPost1 m.JobPost
	// TestJobPost2 has no threshold at all
	TestJobPost2 m.JobPost
	// TestJobPost3 is owned by recruiter 2 and is inactive
	TestJobPost3 m.JobPost
	// TestJobPost4 require test score 60
	TestJobPost4 m.JobPost

	// TestProfileResume is stored resume of job seeker 1
	TestProfileResume m.File
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		Host:      dbHost,
		DBName:    dbName,
		UseConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config, nil)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts job seekers, recruiters, an admin and job posts with different thresholds.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount > 0 {
		return loadTestData(db)
	}

	userSpecs := []struct {
		username  string
		email     *string
		firstName string
		lastName  string
		company   string
		role      string
	}{
		{"jobseeker_1", ptr("seeker1@example.com"), "Alice", "Nguyen", "", m.RoleJobSeeker},
		{"jobseeker_2", ptr("seeker2@example.com"), "Bob", "Somsak", "", m.RoleJobSeeker},
		{"recruiter_1", ptr("recruiter1@example.com"), "Carol", "Tan", "TechNova", m.RoleRecruiter},
		{"recruiter_2", ptr("recruiter2@example.com"), "Dan", "Lee", "DataForge", m.RoleRecruiter},
		{"admin_user", ptr("admin@example.com"), "", "", "", m.RoleAdmin},
	}

	// Pre-hash shared password for all seeded users
	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		users = append(users, m.User{
			ID:          uuid.New(),
			Username:    s.username,
			Email:       s.email,
			FirstName:   s.firstName,
			LastName:    s.lastName,
			CompanyName: s.company,
			Role:        s.role,
			Password:    hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}
	assignUsers(users)

	TestProfileResume = m.File{
		OwnerID:     TestUserJobSeeker1.ID,
		FileName:    "alice_resume.pdf",
		ContentType: "application/pdf",
		Extension:   ".pdf",
		Content:     []byte("%PDF-1.4 alice resume"),
	}
	TestProfileResume.Size = int64(len(TestProfileResume.Content))
	if err := db.Create(&TestProfileResume).Error; err != nil {
		return err
	}
	if err := db.Model(&TestUserJobSeeker1).Updates(map[string]interface{}{
		"resume_blob_id":   TestProfileResume.ID,
		"resume_file_name": TestProfileResume.FileName,
	}).Error; err != nil {
		return err
	}
	TestUserJobSeeker1.ResumeBlobID = &TestProfileResume.ID
	TestUserJobSeeker1.ResumeFileName = &TestProfileResume.FileName

	exp1 := time.Now().AddDate(0, 1, 0)
	exp2 := time.Now().AddDate(0, 2, 0)

	jobPosts := []m.JobPost{
		{
			RecruiterID: TestUserRecruiter1.ID,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:                   "Backend Engineer",
				CompanyName:             "TechNova",
				Desc:                    "Work on Go microservices and database layers.",
				Req:                     "Go basics; SQL familiarity",
				RequiredSkills:          pq.StringArray{"go", "sql", "docker"},
				Location:                "Bangkok (Hybrid)",
				Type:                    "Full-time",
				Expiring:                &exp1,
				MinExternalScoreForTest: ptr(70),
			},
			Active: true,
		},
		{
			RecruiterID: TestUserRecruiter1.ID,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:          "Frontend Developer",
				CompanyName:    "TechNova",
				Desc:           "Build component library in React.",
				Req:            "JS/TS fundamentals",
				RequiredSkills: pq.StringArray{"react", "typescript"},
				Location:       "Remote",
				Type:           "Full-time",
				Expiring:       &exp2,
			},
			Active: true,
		},
		{
			RecruiterID: TestUserRecruiter2.ID,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:          "Data Analyst",
				CompanyName:    "DataForge",
				Desc:           "Support data cleansing and dashboard creation.",
				Req:            "SQL; basic statistics",
				RequiredSkills: pq.StringArray{"sql", "statistics"},
				Location:       "Chiang Mai (On-site)",
				Type:           "Internship",
			},
			Active: true,
		},
		{
			RecruiterID: TestUserRecruiter2.ID,
			EditableJobPostInfo: m.EditableJobPostInfo{
				Title:        "Platform Engineer",
				CompanyName:  "DataForge",
				Desc:         "Run kubernetes clusters.",
				Req:          "Linux, networking",
				Location:     "Remote",
				Type:         "Full-time",
				MinTestScore: ptr(60),
			},
			Active: true,
		},
	}

	if err := db.Create(&jobPosts).Error; err != nil {
		return err
	}
	// gorm skip false on create because of the column default
	if err := db.Model(&jobPosts[2]).Update("active", false).Error; err != nil {
		return err
	}
	jobPosts[2].Active = false

	TestJobPost1 = jobPosts[0]
	TestJobPost2 = jobPosts[1]
	TestJobPost3 = jobPosts[2]
	TestJobPost4 = jobPosts[3]

	return nil
}

func assignUsers(users []m.User) {
	for _, u := range users {
		switch u.Username {
		case "jobseeker_1":
			TestUserJobSeeker1 = u
		case "jobseeker_2":
			TestUserJobSeeker2 = u
		case "recruiter_1":
			TestUserRecruiter1 = u
		case "recruiter_2":
			TestUserRecruiter2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{
		"jobseeker_1", "jobseeker_2", "recruiter_1", "recruiter_2", "admin_user",
	}).Find(&users).Error; err != nil {
		return err
	}
	assignUsers(users)

	if TestUserJobSeeker1.ResumeBlobID != nil {
		_ = db.First(&TestProfileResume, "id = ?", *TestUserJobSeeker1.ResumeBlobID).Error
	}

	var posts []m.JobPost
	if err := db.Order("id ASC").Limit(4).Find(&posts).Error; err != nil {
		return err
	}
	if len(posts) < 4 {
		return fmt.Errorf("expected 4 seeded job posts, found %d", len(posts))
	}
	TestJobPost1, TestJobPost2, TestJobPost3, TestJobPost4 = posts[0], posts[1], posts[2], posts[3]

	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
