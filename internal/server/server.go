package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/config"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/screening"
)

// MyServer hold everything the route handlers need
type MyServer struct {
	DB       *database.DBinstanceStruct
	cfg      *config.Config
	comp     Components
	tokens   *auth.TokenManager
	resolver *auth.Resolver
	pipeline *screening.Pipeline
	log      *zap.Logger
}

// NewMyServer creates a new instance of MyServer
func NewMyServer(cfg *config.Config, db *database.DBinstanceStruct, comp Components, log *zap.Logger) *MyServer {
	log = logger.OrNop(log)
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)
	repo := screening.NewGormRepository(db)

	return &MyServer{
		DB:       db,
		cfg:      cfg,
		comp:     comp,
		tokens:   tokens,
		resolver: auth.NewResolver(db, tokens, comp.Blacklist, log),
		pipeline: screening.NewPipeline(repo, repo, repo, comp.Blobs, comp.Scorer, log),
		log:      log,
	}
}

// HTTPServer construct http.Server serving the registered routes.
// Write timeout leave room for a slow scorer with retries.
func (s *MyServer) HTTPServer() *http.Server {
	writeTimeout := time.Duration(s.cfg.Scorer.MaxAttempts)*(s.cfg.Scorer.ConnectTimeout+s.cfg.Scorer.ReadTimeout) + 30*time.Second

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
	}
}
