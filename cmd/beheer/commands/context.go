package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"stichting-asha/internal/config"
	"stichting-asha/internal/database"

	"github.com/sirupsen/logrus"
)

const defaultAPIURL = "http://localhost:8080"

// AppContext holds the dependencies shared across all commands. The
// database connection is opened lazily since the agenda commands only
// talk to the API.
type AppContext struct {
	Verbose bool
	APIURL  string

	Ctx    context.Context
	Cfg    *config.Config
	Logger *logrus.Logger

	db *database.MongoDB
}

func (a *AppContext) Init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.Ctx = ctx

	a.Logger = logrus.New()
	a.Logger.SetOutput(os.Stderr)
	a.Logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if a.Verbose {
		a.Logger.SetLevel(logrus.DebugLevel)
	}

	if a.APIURL == "" {
		a.APIURL = os.Getenv("ASHA_API_URL")
	}
	if a.APIURL == "" {
		a.APIURL = defaultAPIURL
	}
	return nil
}

// Database connects on first use with the server's configuration.
func (a *AppContext) Database() (*database.MongoDB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if a.Cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		a.Cfg = cfg
	}

	db, err := database.NewMongoDB(a.Cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *AppContext) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.Logger.WithError(err).Warn("error disconnecting from MongoDB")
	}
}

func (a *AppContext) timeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(a.Ctx, d)
}
