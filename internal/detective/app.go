package detective

import (
	"context"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"kernel-module-detective/internal/config"
	"kernel-module-detective/internal/db"
	"kernel-module-detective/internal/render"
)

// App is the application behind the CLI. Tables and reports go to Out, logs go to stderr.
type App struct {
	Config config.Config
	Out    io.Writer
}

// New returns an App configured from the environment that writes to stdout.
func New() *App {
	return &App{
		Config: config.Default(),
		Out:    os.Stdout,
	}
}

func (a *App) renderer() *render.Renderer {
	return render.NewRenderer(a.Out, a.Config.Display)
}

// withStore connects to the configured store and hands it to action. Read-only connections are
// used by query-side commands and require every dataset table to exist.
func (a *App) withStore(ctx context.Context, readOnly bool, action func(database *db.Database) error) error {
	dbConfig := a.Config.Database
	dbConfig.ReadOnly = readOnly

	database, err := db.Connect(ctx, dbConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.WithError(err).Warn("closing store")
		}
	}()

	if readOnly {
		if err := database.CheckSchema(ctx); err != nil {
			return err
		}
	}
	return action(database)
}
