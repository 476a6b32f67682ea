// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/oneid-io/oneid/internal/config"
)

// Create builds the Data Source Name of the configured engine. The same DSN
// serves gorm and the token storage of the engine.
func Create(cfg *config.Config) string {
	db := cfg.DB

	switch db.GormEngine {
	case config.EnginePostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(db.User, db.Password),
			Host:     db.Host + ":" + strconv.Itoa(db.Port),
			Path:     "/" + db.Name,
			RawQuery: db.Extras,
		}

		return u.String()
	case config.EngineSQLite:
		if db.Path == "" {
			return ":memory:"
		}

		return db.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			db.User,
			db.Password,
			db.Host,
			db.Port,
			db.Name,
			db.Extras,
		)
	}
}
