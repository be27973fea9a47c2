package middleware

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

// DefaultRequestsPerSecond is used when rate limit is not configured
const DefaultRequestsPerSecond = 5

func keyFunc(c *gin.Context) string {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return "ip: " + c.ClientIP()
	}
	return "user: " + identity.SubjectID.String()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.Header("Retry-After", time.Until(info.ResetTime).Round(time.Second).String())
	c.AbortWithStatusJSON(http.StatusTooManyRequests, utilities.ErrorResponse{
		Error: "Too many requests. Please try again later.",
	})
}

// NewRateLimitStore count requests in redis when client is given so every instance share the budget,
// otherwise in process memory
func NewRateLimitStore(reqPerSec uint, client *redis.Client) ratelimit.Store {
	if reqPerSec == 0 {
		reqPerSec = DefaultRequestsPerSecond
	}

	if client != nil {
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        time.Second,
			Limit:       reqPerSec,
		})
	}

	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: reqPerSec,
	})
}

// RateLimiterMiddleware limit requests per identity, or per client ip before authentication
func RateLimiterMiddleware(store ratelimit.Store) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      keyFunc,
		ErrorHandler: errorHandler,
	})
}
