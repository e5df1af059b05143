package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/time/rate"

	"github.com/dashlab/labctl/internal/logger"
)

// Prober waits for stack services to become ready after a detached start.
// Attempts are paced with a rate limiter; the overall wait is bounded by
// the configured timeout.
type Prober struct {
	dashboardURL   string
	mongoURI       string
	timeout        time.Duration
	attemptsPerSec float64
	httpClient     *http.Client
}

// New creates a new prober
func New(dashboardURL, mongoURI string, timeout time.Duration, attemptsPerSec float64) *Prober {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if attemptsPerSec <= 0 {
		attemptsPerSec = 1
	}
	return &Prober{
		dashboardURL:   dashboardURL,
		mongoURI:       mongoURI,
		timeout:        timeout,
		attemptsPerSec: attemptsPerSec,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// The dashboard redirects unauthenticated requests to the
				// identity provider; reaching the redirect is enough.
				return http.ErrUseLastResponse
			},
		},
	}
}

// WaitForDashboard blocks until the dashboard answers HTTP with any
// non-5xx status, or the timeout elapses.
func (p *Prober) WaitForDashboard(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(p.attemptsPerSec), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("dashboard not ready at %s: %w", p.dashboardURL, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.dashboardURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build probe request: %w", err)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			logger.Debug("dashboard probe attempt failed: %v", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode < http.StatusInternalServerError {
			logger.Debug("dashboard ready with status %d", resp.StatusCode)
			return nil
		}
		logger.Debug("dashboard probe got status %d", resp.StatusCode)
	}
}

// WaitForMongo blocks until the document database answers a ping, or the
// timeout elapses. Credentials are taken from the MONGO_INITDB_* variables
// when present, matching the stack's env file contract.
func (p *Prober) WaitForMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(p.attemptsPerSec), 1)
	uri := MongoURIWithEnvCredentials(p.mongoURI)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("mongo not ready at %s: %w", p.mongoURI, err)
		}

		if err := pingMongo(ctx, uri); err != nil {
			logger.Debug("mongo probe attempt failed: %v", err)
			continue
		}
		return nil
	}
}

func pingMongo(ctx context.Context, uri string) error {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(3 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return nil
}

// MongoURIWithEnvCredentials injects the MONGO_INITDB_ROOT_USERNAME and
// MONGO_INITDB_ROOT_PASSWORD credentials into the given URI when both are
// set and the URI carries no credentials of its own. The credential values
// are never validated, only passed through.
func MongoURIWithEnvCredentials(uri string) string {
	username := os.Getenv("MONGO_INITDB_ROOT_USERNAME")
	password := os.Getenv("MONGO_INITDB_ROOT_PASSWORD")
	if username == "" || password == "" {
		return uri
	}

	parsed, err := url.Parse(uri)
	if err != nil || parsed.User != nil {
		return uri
	}

	parsed.User = url.UserPassword(username, password)
	return parsed.String()
}
